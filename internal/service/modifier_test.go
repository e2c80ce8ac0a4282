package service

import (
	"testing"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeLine(item *model.InventoryItem, qty int64) model.ProductIngredient {
	return model.ProductIngredient{
		ItemID:   item.ID,
		Item:     item,
		Quantity: decimal.NewFromInt(qty),
	}
}

func namedItem(name, category string) *model.InventoryItem {
	item := &model.InventoryItem{Name: name, Category: category}
	item.ID = uuid.New()
	return item
}

func quantityFor(t *testing.T, effective []EffectiveIngredient, itemName string) (decimal.Decimal, bool) {
	t.Helper()
	for _, e := range effective {
		if e.ItemName == itemName {
			return e.Quantity, true
		}
	}
	return decimal.Zero, false
}

func TestResolveSauceScaling(t *testing.T) {
	sauce := namedItem("Salsa", "Aderezos")
	bread := namedItem("Pan Perro", "Panadería")
	recipe := []model.ProductIngredient{
		recipeLine(bread, 1),
		recipeLine(sauce, 5),
	}

	tests := []struct {
		name      string
		modifiers model.SaleModifiers
		wantSauce int64
	}{
		{"default", model.SaleModifiers{}, 5},
		{"extra sauce doubles", model.SaleModifiers{ExtraSauce: true}, 10},
		{"no sauce drops the line", model.SaleModifiers{NoSauce: true}, 0},
		{"no sauce wins over extra", model.SaleModifiers{NoSauce: true, ExtraSauce: true}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			effective, err := ResolveEffectiveIngredients(ResolveInput{
				Recipe:    recipe,
				Modifiers: tc.modifiers,
			})
			require.NoError(t, err)

			// Non-sauce ingredients are never scaled.
			breadQty, ok := quantityFor(t, effective, "Pan Perro")
			require.True(t, ok)
			assert.True(t, breadQty.Equal(decimal.NewFromInt(1)))

			sauceQty, found := quantityFor(t, effective, "Salsa")
			if tc.wantSauce == 0 {
				assert.False(t, found, "zero-quantity sauce should be dropped, not emitted")
			} else {
				require.True(t, found)
				assert.True(t, sauceQty.Equal(decimal.NewFromInt(tc.wantSauce)))
			}
		})
	}
}

func TestResolveSauceByKeyword(t *testing.T) {
	// Name-based classification works even when the category is off.
	sauce := namedItem("Salsa de ajo", "Complementos")
	effective, err := ResolveEffectiveIngredients(ResolveInput{
		Recipe:    []model.ProductIngredient{recipeLine(sauce, 5)},
		Modifiers: model.SaleModifiers{ExtraSauce: true},
	})
	require.NoError(t, err)
	require.Len(t, effective, 1)
	assert.True(t, effective[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestResolveMissingProtein(t *testing.T) {
	bread := namedItem("Pan Perro", "Panadería")
	_, err := ResolveEffectiveIngredients(ResolveInput{
		Recipe:                []model.ProductIngredient{recipeLine(bread, 1)},
		RequiresProteinChoice: true,
	})
	assert.ErrorIs(t, err, ErrMissingProtein)
}

func TestResolveProteinPortion(t *testing.T) {
	bread := namedItem("Pan Perro", "Panadería")
	chicken := namedItem("Pollo Desmechado", "Carnes")

	effective, err := ResolveEffectiveIngredients(ResolveInput{
		Recipe:                []model.ProductIngredient{recipeLine(bread, 1)},
		RequiresProteinChoice: true,
		ProteinItem:           chicken,
	})
	require.NoError(t, err)

	// The protein rides along as a flat standard portion, not scaled by the
	// recipe.
	qty, ok := quantityFor(t, effective, "Pollo Desmechado")
	require.True(t, ok)
	assert.True(t, qty.Equal(DefaultProteinPortion))
}

func TestResolveOptionalProteinStillConsumes(t *testing.T) {
	// A protein chosen on a product that does not require one still consumes.
	bread := namedItem("Pan Perro", "Panadería")
	pork := namedItem("Cerdo Desmechado", "Carnes")

	effective, err := ResolveEffectiveIngredients(ResolveInput{
		Recipe:      []model.ProductIngredient{recipeLine(bread, 1)},
		ProteinItem: pork,
	})
	require.NoError(t, err)

	qty, ok := quantityFor(t, effective, "Cerdo Desmechado")
	require.True(t, ok)
	assert.True(t, qty.Equal(DefaultProteinPortion))
}

func TestResolveSkipsUnloadedRecipeRows(t *testing.T) {
	effective, err := ResolveEffectiveIngredients(ResolveInput{
		Recipe: []model.ProductIngredient{{ItemID: uuid.New(), Quantity: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)
	assert.Empty(t, effective)
}
