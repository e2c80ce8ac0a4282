package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense categories as the business records them
var ExpenseCategories = []string{
	"Insumos",
	"Servicios",
	"Transporte",
	"Alimentación",
	"Personal",
	"Otros",
}

// Expense is an operational cost entry, consumed by the metrics aggregator
// as a cost input alongside COGS.
type Expense struct {
	BaseModel
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(50);not null" json:"category" validate:"required"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	ReceiptURL  string          `gorm:"type:text" json:"receipt_url,omitempty"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
}
