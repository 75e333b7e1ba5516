package http

import (
	"context"
	"errors"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/flaviojulio/ir-app/internal/domain"
	"github.com/flaviojulio/ir-app/internal/usecase"
)

const (
	localUserKey  = "auth_user"
	localTokenKey = "auth_token"
)

type AuthService interface {
	Register(ctx context.Context, username, email, fullName, password string) (domain.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (domain.User, string, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	UpdateUser(ctx context.Context, id int64, update usecase.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AddRole(ctx context.Context, userID int64, role string) error
	RemoveRole(ctx context.Context, userID int64, role string) error
	ListRoles(ctx context.Context) ([]domain.Role, error)
	CreateRole(ctx context.Context, name, description string) (domain.Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

type LedgerService interface {
	CreateOperation(ctx context.Context, op domain.Operation) (int64, error)
	ImportOperations(ctx context.Context, userID int64, ops []domain.Operation) (int, error)
	UpdateOperation(ctx context.Context, op domain.Operation) (bool, error)
	DeleteOperation(ctx context.Context, id, userID int64) (bool, error)
	ListOperations(ctx context.Context, userID int64) ([]domain.Operation, error)
	Portfolio(ctx context.Context, userID int64) ([]domain.PortfolioEntry, error)
	OverridePortfolioEntry(ctx context.Context, userID int64, entry domain.PortfolioEntry) error
	MonthlyResults(ctx context.Context, userID int64) ([]domain.MonthlyResult, error)
	DARFs(ctx context.Context, userID int64) ([]domain.DARF, error)
	ClosedPositions(ctx context.Context, userID int64) ([]domain.ClosedPosition, error)
	ClosedPositionsSummary(ctx context.Context, userID int64) (domain.ClosedPositionsSummary, error)
	Reset(ctx context.Context) error
}

type Router struct {
	app           *fiber.App
	authService   AuthService
	ledgerService LedgerService
}

func New(auth AuthService, ledger LedgerService) *Router {
	app := fiber.New()

	r := &Router{
		app:           app,
		authService:   auth,
		ledgerService: ledger,
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", r.register)
	authGroup.Post("/login", r.login)
	authGroup.Post("/logout", r.requireAuth, r.logout)
	authGroup.Get("/me", r.requireAuth, r.me)

	users := v1.Group("/users", r.requireAuth, r.requireAdmin)
	users.Get("/", r.listUsers)
	users.Get("/:id", r.getUser)
	users.Put("/:id", r.updateUser)
	users.Delete("/:id", r.deleteUser)
	users.Post("/:id/roles/:role", r.addRole)
	users.Delete("/:id/roles/:role", r.removeRole)

	roles := v1.Group("/roles", r.requireAuth, r.requireAdmin)
	roles.Get("/", r.listRoles)
	roles.Post("/", r.createRole)
	roles.Delete("/:id", r.deleteRole)

	v1.Delete("/reset", r.requireAuth, r.requireAdmin, r.reset)

	ops := v1.Group("/operations", r.requireAuth)
	ops.Get("/", r.listOperations)
	ops.Post("/", r.createOperation)
	ops.Post("/import", r.importOperations)
	ops.Get("/closed", r.listClosedPositions)
	ops.Get("/closed/summary", r.closedPositionsSummary)
	ops.Put("/:id", r.updateOperation)
	ops.Delete("/:id", r.deleteOperation)

	v1.Get("/portfolio", r.requireAuth, r.getPortfolio)
	v1.Put("/portfolio/:ticker", r.requireAuth, r.overridePortfolioEntry)
	v1.Get("/results", r.requireAuth, r.listResults)
	v1.Get("/darfs", r.requireAuth, r.listDARFs)

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return r
}

func (r *Router) App() *fiber.App {
	return r.app
}

// requireAuth resolves the bearer token and stashes the user in the request
// locals. Each token failure mode gets its own 401 message.
func (r *Router) requireAuth(c *fiber.Ctx) error {
	if r.authService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "auth service unavailable")
	}

	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer"))
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	user, err := r.authService.Verify(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			return fiber.NewError(fiber.StatusUnauthorized, "token expired")
		case errors.Is(err, domain.ErrTokenRevoked):
			return fiber.NewError(fiber.StatusUnauthorized, "token revoked")
		case errors.Is(err, domain.ErrTokenMalformed):
			return fiber.NewError(fiber.StatusUnauthorized, "token malformed")
		case errors.Is(err, domain.ErrTokenNotFound), errors.Is(err, domain.ErrNotFound):
			return fiber.NewError(fiber.StatusUnauthorized, "unknown token")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Locals(localUserKey, user)
	c.Locals(localTokenKey, token)
	return c.Next()
}

func (r *Router) requireAdmin(c *fiber.Ctx) error {
	user, ok := c.Locals(localUserKey).(domain.User)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}
	if !user.HasRole(domain.RoleAdmin) {
		return fiber.NewError(fiber.StatusForbidden, "admin role required")
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) domain.User {
	user, _ := c.Locals(localUserKey).(domain.User)
	return user
}

func currentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localTokenKey).(string)
	return token
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// serviceError maps domain sentinel errors onto HTTP statuses.
func serviceError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrRoleExists),
		errors.Is(err, domain.ErrRoleInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTokenNotFound):
		return fiber.NewError(fiber.StatusUnauthorized, "unknown token")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
