package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleDraft     SaleStatus = "draft"
	SalePreparing SaleStatus = "preparing"
	SaleReady     SaleStatus = "ready"
	SaleDelivered SaleStatus = "delivered"
	SalePaid      SaleStatus = "paid"
	SaleVoided    SaleStatus = "voided"
	SaleRefunded  SaleStatus = "refunded"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// saleTransitions is the legal edge set of the order lifecycle. voided and
// refunded are terminal; paid can only move to refunded.
var saleTransitions = map[SaleStatus][]SaleStatus{
	SaleDraft:     {SalePreparing, SaleVoided},
	SalePreparing: {SaleReady, SaleVoided},
	SaleReady:     {SaleDelivered, SaleVoided},
	SaleDelivered: {SalePaid, SaleVoided},
	SalePaid:      {SaleRefunded},
	SaleVoided:    {},
	SaleRefunded:  {},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s SaleStatus) CanTransition(next SaleStatus) bool {
	for _, t := range saleTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s SaleStatus) IsTerminal() bool {
	return len(saleTransitions[s]) == 0
}

// Sale is one customer transaction.
type Sale struct {
	BaseModel
	OrderNumber int             `gorm:"autoIncrement;uniqueIndex" json:"order_number"`
	Description string          `gorm:"type:text" json:"description"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`

	// Empty until payment; validated at the delivered -> paid transition
	PaymentMethod string `gorm:"type:varchar(20)" json:"payment_method"`

	SellerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller   *User      `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Status   SaleStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	// Void / refund metadata
	VoidReason string     `gorm:"type:text" json:"void_reason,omitempty"`
	VoidedAt   *time.Time `json:"voided_at,omitempty"`
	VoidedBy   *uuid.UUID `gorm:"type:uuid" json:"voided_by,omitempty"`

	Items []SaleItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// SaleModifiers is the per-line customization payload. Protein selects an
// additional inventory item consumed at the standard portion size; the sauce
// flags scale sauce-class ingredients of the recipe.
type SaleModifiers struct {
	Protein    *string `gorm:"type:varchar(255)" json:"protein,omitempty"`
	ExtraSauce bool    `gorm:"default:false" json:"extra_sauce"`
	NoSauce    bool    `gorm:"default:false" json:"no_sauce"`
}

// SaleItem is one product line in a sale. UnitPrice and TotalPrice are frozen
// at add time so later menu price changes never rewrite history.
type SaleItem struct {
	BaseModel
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	Quantity  int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`

	Modifiers SaleModifiers `gorm:"embedded;embeddedPrefix:modifier_" json:"modifiers"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
