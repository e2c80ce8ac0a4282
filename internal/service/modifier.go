package service

import (
	"errors"
	"strings"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingProtein = errors.New("missing required protein choice")
	ErrUnknownProtein = errors.New("selected protein is not a known inventory item")
)

// DefaultProteinPortion is the flat portion (in grams) consumed per unit when
// a protein modifier is chosen. Not scaled by the recipe.
var DefaultProteinPortion = decimal.NewFromInt(30)

// sauceKeywords classifies recipe ingredients affected by the sauce flags.
var sauceKeywords = []string{"salsa", "sauce"}

// EffectiveIngredient is one resolved consumption line, per unit sold.
type EffectiveIngredient struct {
	ItemID   uuid.UUID
	ItemName string
	Quantity decimal.Decimal
}

// ResolveInput carries everything the resolver needs for one sale line. The
// protein item, if any, is looked up by the caller so resolution itself stays
// pure.
type ResolveInput struct {
	Recipe                []model.ProductIngredient
	RequiresProteinChoice bool
	ProteinItem           *model.InventoryItem
	Modifiers             model.SaleModifiers
	ProteinPortion        decimal.Decimal // zero means DefaultProteinPortion
}

func isSauce(ing model.ProductIngredient) bool {
	name := strings.ToLower(ing.Item.Name)
	for _, kw := range sauceKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return ing.Item.Category == "Aderezos"
}

// ResolveEffectiveIngredients applies the line's modifiers to its recipe and
// returns the per-unit quantities the consumption engine should decrement.
//
// Rules, in order:
//   - a product that requires a protein choice fails hard without one
//   - sauce-class ingredients scale x0 (no sauce), x2 (extra sauce), x1
//     otherwise; no-sauce wins when both flags are set
//   - the chosen protein is added as a flat standard portion
//   - zero-quantity results are dropped (no movement, not an error)
func ResolveEffectiveIngredients(in ResolveInput) ([]EffectiveIngredient, error) {
	if in.RequiresProteinChoice && in.ProteinItem == nil {
		return nil, ErrMissingProtein
	}

	effective := make([]EffectiveIngredient, 0, len(in.Recipe)+1)

	for _, ing := range in.Recipe {
		if ing.Item == nil {
			// Recipe row without its item preloaded; nothing to classify or
			// decrement against.
			continue
		}

		qty := ing.Quantity
		if isSauce(ing) {
			switch {
			case in.Modifiers.NoSauce:
				qty = decimal.Zero
			case in.Modifiers.ExtraSauce:
				qty = qty.Mul(decimal.NewFromInt(2))
			}
		}

		if qty.IsZero() {
			continue
		}

		effective = append(effective, EffectiveIngredient{
			ItemID:   ing.ItemID,
			ItemName: ing.Item.Name,
			Quantity: qty,
		})
	}

	if in.ProteinItem != nil {
		portion := in.ProteinPortion
		if portion.IsZero() {
			portion = DefaultProteinPortion
		}
		effective = append(effective, EffectiveIngredient{
			ItemID:   in.ProteinItem.ID,
			ItemName: in.ProteinItem.Name,
			Quantity: portion,
		})
	}

	return effective, nil
}
