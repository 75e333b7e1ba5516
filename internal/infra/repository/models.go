package repository

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type OperationModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_operations_user"`
	TradeDate time.Time `gorm:"column:trade_date;not null;index:idx_operations_user_date"`
	Ticker    string    `gorm:"column:ticker;not null"`
	Side      string    `gorm:"column:side;not null"`
	Quantity  int64     `gorm:"column:quantity;not null"`
	UnitPrice float64   `gorm:"column:unit_price;not null"`
	Fees      float64   `gorm:"column:fees;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OperationModel) TableName() string {
	return "operations"
}

func toOperationModel(op domain.Operation) OperationModel {
	return OperationModel{
		ID:        op.ID,
		UserID:    op.UserID,
		TradeDate: op.TradeDate,
		Ticker:    op.Ticker,
		Side:      string(op.Side),
		Quantity:  op.Quantity,
		UnitPrice: op.UnitPrice,
		Fees:      op.Fees,
	}
}

func (m OperationModel) toDomain() domain.Operation {
	return domain.Operation{
		ID:        m.ID,
		UserID:    m.UserID,
		TradeDate: domain.DateOnly(m.TradeDate),
		Ticker:    m.Ticker,
		Side:      domain.OperationSide(m.Side),
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Fees:      m.Fees,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type PortfolioEntryModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:idx_portfolio_user_ticker"`
	Ticker       string    `gorm:"column:ticker;not null;uniqueIndex:idx_portfolio_user_ticker"`
	Quantity     int64     `gorm:"column:quantity;not null"`
	TotalCost    float64   `gorm:"column:total_cost;not null"`
	AveragePrice float64   `gorm:"column:average_price;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PortfolioEntryModel) TableName() string {
	return "portfolio_entries"
}

func toPortfolioEntryModel(userID int64, entry domain.PortfolioEntry) PortfolioEntryModel {
	return PortfolioEntryModel{
		UserID:       userID,
		Ticker:       entry.Ticker,
		Quantity:     entry.Quantity,
		TotalCost:    entry.TotalCost,
		AveragePrice: entry.AveragePrice,
	}
}

func (m PortfolioEntryModel) toDomain() domain.PortfolioEntry {
	return domain.PortfolioEntry{
		Ticker:       m.Ticker,
		Quantity:     m.Quantity,
		TotalCost:    m.TotalCost,
		AveragePrice: m.AveragePrice,
	}
}

type MonthlyResultModel struct {
	ID     int64  `gorm:"column:id;primaryKey"`
	UserID int64  `gorm:"column:user_id;not null;uniqueIndex:idx_monthly_user_month"`
	Month  string `gorm:"column:month;not null;uniqueIndex:idx_monthly_user_month"`

	SwingSales   float64 `gorm:"column:swing_sales;not null"`
	SwingCost    float64 `gorm:"column:swing_cost;not null"`
	SwingNetGain float64 `gorm:"column:swing_net_gain;not null"`
	SwingExempt  bool    `gorm:"column:swing_exempt;not null"`
	SwingTaxDue  float64 `gorm:"column:swing_tax_due;not null"`

	DayNetGain  float64 `gorm:"column:day_net_gain;not null"`
	DayTaxDue   float64 `gorm:"column:day_tax_due;not null"`
	DayWithheld float64 `gorm:"column:day_withheld;not null"`
	DayPayable  float64 `gorm:"column:day_payable;not null"`

	SwingLossCarry float64 `gorm:"column:swing_loss_carry;not null"`
	DayLossCarry   float64 `gorm:"column:day_loss_carry;not null"`

	DARFCode    *string    `gorm:"column:darf_code"`
	DARFPeriod  *string    `gorm:"column:darf_period"`
	DARFAmount  *float64   `gorm:"column:darf_amount"`
	DARFDueDate *time.Time `gorm:"column:darf_due_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MonthlyResultModel) TableName() string {
	return "monthly_results"
}

func toMonthlyResultModel(result domain.MonthlyResult) MonthlyResultModel {
	model := MonthlyResultModel{
		UserID:         result.UserID,
		Month:          result.Month,
		SwingSales:     result.SwingSales,
		SwingCost:      result.SwingCost,
		SwingNetGain:   result.SwingNetGain,
		SwingExempt:    result.SwingExempt,
		SwingTaxDue:    result.SwingTaxDue,
		DayNetGain:     result.DayNetGain,
		DayTaxDue:      result.DayTaxDue,
		DayWithheld:    result.DayWithheld,
		DayPayable:     result.DayPayable,
		SwingLossCarry: result.SwingLossCarry,
		DayLossCarry:   result.DayLossCarry,
	}
	if result.DARF != nil {
		darf := *result.DARF
		model.DARFCode = &darf.Code
		model.DARFPeriod = &darf.Period
		model.DARFAmount = &darf.Amount
		model.DARFDueDate = &darf.DueDate
	}
	return model
}

func (m MonthlyResultModel) toDomain() domain.MonthlyResult {
	result := domain.MonthlyResult{
		ID:             m.ID,
		UserID:         m.UserID,
		Month:          m.Month,
		SwingSales:     m.SwingSales,
		SwingCost:      m.SwingCost,
		SwingNetGain:   m.SwingNetGain,
		SwingExempt:    m.SwingExempt,
		SwingTaxDue:    m.SwingTaxDue,
		DayNetGain:     m.DayNetGain,
		DayTaxDue:      m.DayTaxDue,
		DayWithheld:    m.DayWithheld,
		DayPayable:     m.DayPayable,
		SwingLossCarry: m.SwingLossCarry,
		DayLossCarry:   m.DayLossCarry,
	}
	if m.DARFCode != nil && m.DARFAmount != nil {
		result.DARF = &domain.DARF{
			Code:   *m.DARFCode,
			Amount: *m.DARFAmount,
		}
		if m.DARFPeriod != nil {
			result.DARF.Period = *m.DARFPeriod
		}
		if m.DARFDueDate != nil {
			result.DARF.DueDate = *m.DARFDueDate
		}
	}
	return result
}

type ClosedPositionModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	UserID        int64          `gorm:"column:user_id;not null;index:idx_closed_user"`
	Ticker        string         `gorm:"column:ticker;not null"`
	OpenDate      time.Time      `gorm:"column:open_date;not null"`
	CloseDate     time.Time      `gorm:"column:close_date;not null"`
	Direction     string         `gorm:"column:direction;not null"`
	Quantity      int64          `gorm:"column:quantity;not null"`
	OpenPrice     float64        `gorm:"column:open_price;not null"`
	ClosePrice    float64        `gorm:"column:close_price;not null"`
	TotalFees     float64        `gorm:"column:total_fees;not null"`
	Result        float64        `gorm:"column:result;not null"`
	ResultPercent float64        `gorm:"column:result_percent;not null"`
	DayTrade      bool           `gorm:"column:day_trade;not null"`
	RelatedLegs   datatypes.JSON `gorm:"column:related_legs"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (ClosedPositionModel) TableName() string {
	return "closed_positions"
}

func toClosedPositionModel(pos domain.ClosedPosition) ClosedPositionModel {
	legs, _ := json.Marshal(pos.RelatedLegs)
	return ClosedPositionModel{
		UserID:        pos.UserID,
		Ticker:        pos.Ticker,
		OpenDate:      pos.OpenDate,
		CloseDate:     pos.CloseDate,
		Direction:     string(pos.Direction),
		Quantity:      pos.Quantity,
		OpenPrice:     pos.OpenPrice,
		ClosePrice:    pos.ClosePrice,
		TotalFees:     pos.TotalFees,
		Result:        pos.Result,
		ResultPercent: pos.ResultPercent,
		DayTrade:      pos.DayTrade,
		RelatedLegs:   datatypes.JSON(legs),
	}
}

func (m ClosedPositionModel) toDomain() domain.ClosedPosition {
	pos := domain.ClosedPosition{
		ID:            m.ID,
		UserID:        m.UserID,
		Ticker:        m.Ticker,
		OpenDate:      domain.DateOnly(m.OpenDate),
		CloseDate:     domain.DateOnly(m.CloseDate),
		Direction:     domain.CloseDirection(m.Direction),
		Quantity:      m.Quantity,
		OpenPrice:     m.OpenPrice,
		ClosePrice:    m.ClosePrice,
		TotalFees:     m.TotalFees,
		Result:        m.Result,
		ResultPercent: m.ResultPercent,
		DayTrade:      m.DayTrade,
	}
	if len(m.RelatedLegs) > 0 {
		_ = json.Unmarshal(m.RelatedLegs, &pos.RelatedLegs)
	}
	return pos
}

type UserModel struct {
	ID           int64       `gorm:"column:id;primaryKey"`
	Username     string      `gorm:"column:username;not null;uniqueIndex"`
	Email        string      `gorm:"column:email;not null;uniqueIndex"`
	FullName     string      `gorm:"column:full_name"`
	PasswordHash string      `gorm:"column:password_hash;not null"`
	Active       bool        `gorm:"column:active;not null;default:true"`
	Roles        []RoleModel `gorm:"many2many:user_roles"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m UserModel) toDomain() domain.User {
	roles := make([]string, 0, len(m.Roles))
	for _, role := range m.Roles {
		roles = append(roles, role.Name)
	}
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		Roles:        roles,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type RoleModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name;not null;uniqueIndex"`
	Description string `gorm:"column:description"`
}

func (RoleModel) TableName() string {
	return "roles"
}

func (m RoleModel) toDomain() domain.Role {
	return domain.Role{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
	}
}

type AuthTokenModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_tokens_user"`
	JTI       string    `gorm:"column:jti;not null;uniqueIndex"`
	Token     string    `gorm:"column:token;not null;index:idx_tokens_token"`
	IssuedAt  time.Time `gorm:"column:issued_at;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_tokens_expiry"`
	Revoked   bool      `gorm:"column:revoked;not null;default:false"`
}

func (AuthTokenModel) TableName() string {
	return "auth_tokens"
}

func toAuthTokenModel(token domain.AuthToken) AuthTokenModel {
	return AuthTokenModel{
		UserID:    token.UserID,
		JTI:       token.JTI,
		Token:     token.Token,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
	}
}

func (m AuthTokenModel) toDomain() domain.AuthToken {
	return domain.AuthToken{
		ID:        m.ID,
		UserID:    m.UserID,
		JTI:       m.JTI,
		Token:     m.Token,
		IssuedAt:  m.IssuedAt,
		ExpiresAt: m.ExpiresAt,
		Revoked:   m.Revoked,
	}
}
