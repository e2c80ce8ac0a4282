package service

import (
	"testing"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consumptionFixture struct {
	items    *stubItemRepo
	movement *stubMovementRepo
	products *stubProductRepo
	ledger   LedgerService
	engine   ConsumptionEngine
}

func newConsumptionFixture() *consumptionFixture {
	items := newStubItemRepo()
	movement := newStubMovementRepo(items)
	products := newStubProductRepo()
	ledger := NewLedgerService(items, movement)
	engine := NewConsumptionEngine(products, items, movement, ledger, decimal.Zero)
	return &consumptionFixture{
		items:    items,
		movement: movement,
		products: products,
		ledger:   ledger,
		engine:   engine,
	}
}

func saleLine(product *model.Product, qty int, mods model.SaleModifiers) model.SaleItem {
	return model.SaleItem{
		ProductID: product.ID,
		Quantity:  qty,
		Modifiers: mods,
	}
}

func TestConsumeForSaleDecrementsStock(t *testing.T) {
	f := newConsumptionFixture()
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	sausage := f.items.add("Salchicha", "Proteínas", 100, 20, 900)

	perrita := f.products.add("Perrita", 6000, false, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
		{ItemID: sausage.ID, Item: sausage, Quantity: decimal.NewFromInt(1)},
	})

	saleID, actorID := uuid.New(), uuid.New()
	err := f.engine.ConsumeForSale(nil, saleID, actorID, []model.SaleItem{saleLine(perrita, 3, model.SaleModifiers{})})
	require.NoError(t, err)

	// 3 units consume 3 of each single-quantity ingredient.
	assert.True(t, bread.CurrentStock.Equal(decimal.NewFromInt(47)))
	assert.True(t, sausage.CurrentStock.Equal(decimal.NewFromInt(97)))

	movements, err := f.movement.FindBySaleID(saleID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, model.MovementOut, m.Type)
		assert.Equal(t, actorID, m.UserID)
	}
}

func TestConsumeForSaleIsIdempotent(t *testing.T) {
	f := newConsumptionFixture()
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	perrita := f.products.add("Perrita", 6000, false, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
	})

	saleID, actorID := uuid.New(), uuid.New()
	lines := []model.SaleItem{saleLine(perrita, 1, model.SaleModifiers{})}

	require.NoError(t, f.engine.ConsumeForSale(nil, saleID, actorID, lines))
	err := f.engine.ConsumeForSale(nil, saleID, actorID, lines)
	assert.ErrorIs(t, err, ErrAlreadyConsumed)

	// Stock was decremented exactly once.
	assert.True(t, bread.CurrentStock.Equal(decimal.NewFromInt(49)))
}

func TestConsumeForSaleSharesOneGroup(t *testing.T) {
	f := newConsumptionFixture()
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	cheese := f.items.add("Queso", "Complementos", 2000, 500, 20)
	perrita := f.products.add("Perrita", 6000, false, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
		{ItemID: cheese.ID, Item: cheese, Quantity: decimal.NewFromInt(25)},
	})

	saleID := uuid.New()
	require.NoError(t, f.engine.ConsumeForSale(nil, saleID, uuid.New(), []model.SaleItem{
		saleLine(perrita, 1, model.SaleModifiers{}),
	}))

	movements, _ := f.movement.FindBySaleID(saleID)
	require.Len(t, movements, 2)
	require.NotNil(t, movements[0].MovementGroup)
	assert.Equal(t, *movements[0].MovementGroup, *movements[1].MovementGroup)
}

func TestConsumeForSaleSkipsMissingProduct(t *testing.T) {
	f := newConsumptionFixture()
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	perrita := f.products.add("Perrita", 6000, false, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
	})

	ghost := &model.Product{}
	ghost.ID = uuid.New() // never registered in the catalog

	saleID := uuid.New()
	err := f.engine.ConsumeForSale(nil, saleID, uuid.New(), []model.SaleItem{
		saleLine(ghost, 1, model.SaleModifiers{}),
		saleLine(perrita, 1, model.SaleModifiers{}),
	})
	require.NoError(t, err, "a catalog gap degrades, it does not block the sale")

	// The resolvable line still consumed.
	movements, _ := f.movement.FindBySaleID(saleID)
	assert.Len(t, movements, 1)
}

func TestConsumeForSaleUnknownProteinAborts(t *testing.T) {
	f := newConsumptionFixture()
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	granPerra := f.products.add("La Gran Perra", 12000, true, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
	})

	unknown := "Pescado"
	saleID := uuid.New()
	err := f.engine.ConsumeForSale(nil, saleID, uuid.New(), []model.SaleItem{
		saleLine(granPerra, 1, model.SaleModifiers{Protein: &unknown}),
	})
	assert.ErrorIs(t, err, ErrUnknownProtein)

	// Validation failed before any write.
	movements, _ := f.movement.FindBySaleID(saleID)
	assert.Empty(t, movements)
	assert.True(t, bread.CurrentStock.Equal(decimal.NewFromInt(50)))
}

func TestConsumeForSaleProteinConsumesStandardPortion(t *testing.T) {
	f := newConsumptionFixture()
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	chicken := f.items.add("Pollo Desmechado", "Carnes", 2000, 500, 26)
	granPerra := f.products.add("La Gran Perra", 12000, true, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
	})

	protein := "Pollo Desmechado"
	require.NoError(t, f.engine.ConsumeForSale(nil, uuid.New(), uuid.New(), []model.SaleItem{
		saleLine(granPerra, 2, model.SaleModifiers{Protein: &protein}),
	}))

	// 2 units x 30 g standard portion.
	assert.True(t, chicken.CurrentStock.Equal(decimal.NewFromInt(1940)))
}
