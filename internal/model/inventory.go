package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// Inventory categories used by the stand (kept as the business writes them)
var InventoryCategories = []string{
	"Panadería",
	"Proteínas",
	"Aderezos",
	"Complementos",
	"Bebidas",
	"Carnes",
}

// Units of measure
const (
	UnitCount  = "unidades"
	UnitWeight = "gramos"
	UnitVolume = "litros"
)

// InventoryItem is a stocked ingredient or material. CurrentStock is a
// materialized sum maintained by the ledger; movements are the source of
// truth for audit. Stock may go negative (signal, not blocker).
type InventoryItem struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Category     string          `gorm:"type:varchar(50)" json:"category"`
	Unit         string          `gorm:"type:varchar(20)" json:"unit" validate:"required,oneof=unidades gramos litros"`
	CurrentStock decimal.Decimal `gorm:"type:numeric(14,3);default:0" json:"current_stock"`
	MinThreshold decimal.Decimal `gorm:"type:numeric(14,3);default:0" json:"min_threshold"`
	UnitCost     decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"unit_cost"`
}

// InventoryMovement is one append-only ledger entry. Rows are never edited;
// a reversal is a new row with the opposite direction, the same quantity and
// ReversalOf pointing back at the original.
type InventoryMovement struct {
	BaseModel
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item     *InventoryItem  `gorm:"foreignKey:ItemID" json:"item,omitempty" validate:"-"`
	Type     MovementType    `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=in out"`
	Quantity decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Reason   string          `gorm:"type:text;not null" json:"reason" validate:"required"`

	UserID uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`

	// Set when the movement was produced by a sale's consumption (or its reversal)
	SaleID *uuid.UUID `gorm:"type:uuid;index" json:"sale_id,omitempty"`

	// Back-reference to the movement this one reverses. Forms a linked pair,
	// never a cycle: a reversal is itself never reversed.
	ReversalOf *uuid.UUID `gorm:"type:uuid;index" json:"reversal_of,omitempty"`

	// Correlates all movements produced by one business action
	MovementGroup *uuid.UUID `gorm:"type:uuid;index" json:"movement_group,omitempty"`
}

func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// IsReversal reports whether this movement undoes another one.
func (m *InventoryMovement) IsReversal() bool {
	return m.ReversalOf != nil
}

// SignedQuantity is the stock effect of the movement (+in / -out).
func (m *InventoryMovement) SignedQuantity() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
