package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable menu item. The recipe (bill of materials) hangs off
// it as ProductIngredient rows; consumption always goes through the recipe,
// never through the product name.
type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Category    string          `gorm:"type:varchar(50)" json:"category"`

	// Forces the POS to prompt for a protein before the line can be added
	RequiresProteinChoice bool `gorm:"default:false" json:"requires_protein_choice"`

	Active bool `gorm:"default:true" json:"active"`

	Ingredients []ProductIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

// ProductIngredient is one recipe line: how much of an inventory item one
// unit of the product consumes.
type ProductIngredient struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null" json:"item_id" validate:"uuid_required"`
	Item      *InventoryItem  `gorm:"foreignKey:ItemID" json:"item,omitempty" validate:"-"`
	Quantity  decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`

	// Reserved for a future "remove this ingredient" option in the POS
	IsOptional bool `gorm:"default:false" json:"is_optional"`
}

func (ProductIngredient) TableName() string {
	return "product_ingredients"
}
