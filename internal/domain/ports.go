package domain

import "context"

// OperationRepository persists raw buy/sell operations, always scoped to one
// user. List returns operations ordered by (trade_date, id) ascending.
type OperationRepository interface {
	Insert(ctx context.Context, op Operation) (int64, error)
	Get(ctx context.Context, id, userID int64) (Operation, error)
	List(ctx context.Context, userID int64) ([]Operation, error)
	Update(ctx context.Context, op Operation) (bool, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// PortfolioRepository stores the derived per-ticker position snapshot.
type PortfolioRepository interface {
	Upsert(ctx context.Context, userID int64, entry PortfolioEntry) error
	List(ctx context.Context, userID int64) ([]PortfolioEntry, error)
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// MonthlyResultRepository stores one row per user per month.
type MonthlyResultRepository interface {
	Upsert(ctx context.Context, result MonthlyResult) error
	List(ctx context.Context, userID int64) ([]MonthlyResult, error)
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// ClosedPositionRepository caches the matcher's output. The engine clears and
// repopulates the whole set on every reconciliation pass.
type ClosedPositionRepository interface {
	Clear(ctx context.Context, userID int64) error
	SaveAll(ctx context.Context, positions []ClosedPosition) error
	List(ctx context.Context, userID int64) ([]ClosedPosition, error)
}

type UserRepository interface {
	Create(ctx context.Context, user User) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	AddRole(ctx context.Context, userID int64, role string) (bool, error)
	RemoveRole(ctx context.Context, userID int64, role string) (bool, error)
}

type RoleRepository interface {
	Create(ctx context.Context, role Role) (int64, error)
	GetByName(ctx context.Context, name string) (Role, error)
	List(ctx context.Context) ([]Role, error)
	Delete(ctx context.Context, id int64) error
}

// MaintenanceRepository wipes engine data (operations and everything derived
// from them) across all users. Admin-only surface.
type MaintenanceRepository interface {
	WipeEngineData(ctx context.Context) error
}

type TokenRepository interface {
	Store(ctx context.Context, token AuthToken) error
	Get(ctx context.Context, token string) (AuthToken, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int64) error
	PurgeExpired(ctx context.Context) (int64, error)
}
