package service

import (
	"testing"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	*consumptionFixture
	sales   *stubSaleRepo
	service SaleService
}

func newSaleFixture() *saleFixture {
	base := newConsumptionFixture()
	sales := newStubSaleRepo()
	service := NewSaleService(sales, base.products, base.ledger, base.engine, nil)
	return &saleFixture{
		consumptionFixture: base,
		sales:              sales,
		service:            service,
	}
}

// standMenu seeds a small menu with stocked ingredients and returns the
// products by name.
func (f *saleFixture) standMenu() map[string]*model.Product {
	bread := f.items.add("Pan Perro", "Panadería", 50, 10, 700)
	sausage := f.items.add("Salchicha", "Proteínas", 100, 20, 900)
	sauce := f.items.add("Salsa", "Aderezos", 1500, 400, 8)
	f.items.add("Pollo Desmechado", "Carnes", 2000, 500, 26)

	menu := map[string]*model.Product{}
	menu["Perrita"] = f.products.add("Perrita", 6000, false, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
		{ItemID: sausage.ID, Item: sausage, Quantity: decimal.NewFromInt(1)},
		{ItemID: sauce.ID, Item: sauce, Quantity: decimal.NewFromInt(5)},
	})
	menu["Perrota"] = f.products.add("Perrota", 7000, false, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
		{ItemID: sausage.ID, Item: sausage, Quantity: decimal.NewFromInt(2)},
		{ItemID: sauce.ID, Item: sauce, Quantity: decimal.NewFromInt(10)},
	})
	menu["La Gran Perra"] = f.products.add("La Gran Perra", 12000, true, []model.ProductIngredient{
		{ItemID: bread.ID, Item: bread, Quantity: decimal.NewFromInt(1)},
		{ItemID: sausage.ID, Item: sausage, Quantity: decimal.NewFromInt(3)},
	})
	return menu
}

func TestCreateDraftFreezesPricesAndTotals(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{
			{ProductID: menu["Perrita"].ID, Quantity: 1},
			{ProductID: menu["Perrota"].ID, Quantity: 1},
		},
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, model.SaleDraft, sale.Status)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(13000)))
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].UnitPrice.Equal(decimal.NewFromInt(6000)))

	// A later menu price change must not rewrite the sale.
	menu["Perrita"].Price = decimal.NewFromInt(9000)
	stored, err := f.service.GetSale(sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(6000)))
}

func TestCreateDraftRejectsEmptyCart(t *testing.T) {
	f := newSaleFixture()
	_, err := f.service.CreateDraft(CreateSaleRequest{}, uuid.New())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateDraftRejectsInactiveProduct(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	menu["Perrita"].Active = false

	_, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrita"].ID, Quantity: 1}},
	}, uuid.New())
	assert.Error(t, err)
}

func TestCreateDraftRequiresProteinChoice(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()

	_, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["La Gran Perra"].ID, Quantity: 1}},
	}, uuid.New())
	assert.ErrorIs(t, err, ErrMissingProtein)

	protein := "Pollo Desmechado"
	_, err = f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{
			ProductID: menu["La Gran Perra"].ID,
			Quantity:  1,
			Modifiers: model.SaleModifiers{Protein: &protein},
		}},
	}, uuid.New())
	assert.NoError(t, err)
}

func TestKitchenFlowConsumesOnce(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrita"].ID, Quantity: 1}},
	}, actor)
	require.NoError(t, err)

	require.NoError(t, f.service.SendToKitchen(sale.ID, actor))

	movements, _ := f.movement.FindBySaleID(sale.ID)
	assert.Len(t, movements, 3, "one movement per recipe line")

	require.NoError(t, f.service.MarkReady(sale.ID, actor))
	require.NoError(t, f.service.MarkDelivered(sale.ID, actor))

	paid, err := f.service.Pay(sale.ID, actor, model.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, model.SalePaid, paid.Status)
	assert.Equal(t, model.PaymentCash, paid.PaymentMethod)

	// Payment after the kitchen flow must not consume again.
	movements, _ = f.movement.FindBySaleID(sale.ID)
	assert.Len(t, movements, 3)
}

func TestPayRecomputesTotalFromLines(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{
			{ProductID: menu["Perrita"].ID, Quantity: 1},
			{ProductID: menu["Perrota"].ID, Quantity: 1},
		},
	}, actor)
	require.NoError(t, err)

	// Corrupt the stored header total; payment must trust the lines.
	f.sales.sales[sale.ID].TotalAmount = decimal.NewFromInt(1)

	require.NoError(t, f.service.SendToKitchen(sale.ID, actor))
	require.NoError(t, f.service.MarkReady(sale.ID, actor))
	require.NoError(t, f.service.MarkDelivered(sale.ID, actor))

	paid, err := f.service.Pay(sale.ID, actor, model.PaymentCard)
	require.NoError(t, err)
	assert.True(t, paid.TotalAmount.Equal(decimal.NewFromInt(13000)))
}

func TestPayRejectsUnknownMethod(t *testing.T) {
	f := newSaleFixture()
	_, err := f.service.Pay(uuid.New(), uuid.New(), "crypto")
	assert.ErrorIs(t, err, ErrPaymentMethodInvalid)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrita"].ID, Quantity: 1}},
	}, actor)
	require.NoError(t, err)

	// draft cannot skip ahead.
	err = f.service.MarkReady(sale.ID, actor)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, model.SaleDraft, te.From)
	assert.Equal(t, model.SaleReady, te.To)

	// A paid sale cannot go back to the kitchen.
	require.NoError(t, f.service.SendToKitchen(sale.ID, actor))
	require.NoError(t, f.service.MarkReady(sale.ID, actor))
	require.NoError(t, f.service.MarkDelivered(sale.ID, actor))
	_, err = f.service.Pay(sale.ID, actor, model.PaymentCash)
	require.NoError(t, err)

	assert.ErrorAs(t, f.service.SendToKitchen(sale.ID, actor), &te)

	// Terminal states stay terminal.
	require.NoError(t, f.service.Refund(sale.ID, "producto en mal estado", actor))
	assert.ErrorAs(t, f.service.SendToKitchen(sale.ID, actor), &te)
	assert.Error(t, f.service.Void(sale.ID, "x", actor))
}

func TestVoidRequiresReason(t *testing.T) {
	f := newSaleFixture()
	err := f.service.Void(uuid.New(), "", uuid.New())
	assert.ErrorIs(t, err, ErrReasonRequired)

	err = f.service.Refund(uuid.New(), "", uuid.New())
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestVoidDraftWritesNoReversals(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrita"].ID, Quantity: 1}},
	}, actor)
	require.NoError(t, err)

	require.NoError(t, f.service.Void(sale.ID, "cliente se fue", actor))

	voided, _ := f.service.GetSale(sale.ID)
	assert.Equal(t, model.SaleVoided, voided.Status)
	assert.Equal(t, "cliente se fue", voided.VoidReason)

	movements, _ := f.movement.FindBySaleID(sale.ID)
	assert.Empty(t, movements, "a draft never consumed, so there is nothing to reverse")
}

func TestVoidPreparingSaleReversesConsumption(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	bread, _ := f.items.FindByName("Pan Perro")
	startingBread := bread.CurrentStock

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrita"].ID, Quantity: 2}},
	}, actor)
	require.NoError(t, err)
	require.NoError(t, f.service.SendToKitchen(sale.ID, actor))

	assert.False(t, bread.CurrentStock.Equal(startingBread))

	require.NoError(t, f.service.Void(sale.ID, "pedido equivocado", actor))

	// Reversals restore the stock and pair up with the originals.
	assert.True(t, bread.CurrentStock.Equal(startingBread))

	movements, _ := f.movement.FindBySaleID(sale.ID)
	originals, reversals := 0, 0
	for _, m := range movements {
		if m.IsReversal() {
			reversals++
			assert.Equal(t, model.MovementIn, m.Type)
		} else {
			originals++
		}
	}
	assert.Equal(t, originals, reversals)
}

func TestRefundReversesAndStocksReturn(t *testing.T) {
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sausage, _ := f.items.FindByName("Salchicha")
	startingSausage := sausage.CurrentStock

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrota"].ID, Quantity: 1}},
	}, actor)
	require.NoError(t, err)
	require.NoError(t, f.service.SendToKitchen(sale.ID, actor))
	require.NoError(t, f.service.MarkReady(sale.ID, actor))
	require.NoError(t, f.service.MarkDelivered(sale.ID, actor))
	_, err = f.service.Pay(sale.ID, actor, model.PaymentCash)
	require.NoError(t, err)

	require.NoError(t, f.service.Refund(sale.ID, "cliente devolvió el pedido", actor))

	refunded, _ := f.service.GetSale(sale.ID)
	assert.Equal(t, model.SaleRefunded, refunded.Status)
	assert.True(t, sausage.CurrentStock.Equal(startingSausage))
}

func TestDirectPaymentConsumesAtPay(t *testing.T) {
	// An order that reaches payment without the kitchen flow consumes there.
	f := newSaleFixture()
	menu := f.standMenu()
	actor := uuid.New()

	sale, err := f.service.CreateDraft(CreateSaleRequest{
		Lines: []SaleLineInput{{ProductID: menu["Perrita"].ID, Quantity: 1}},
	}, actor)
	require.NoError(t, err)

	// Walk the lifecycle without consumption by clearing the engine's work:
	// simulate by moving through states directly in the stub, as a crash
	// between transition and consumption would leave it.
	f.sales.sales[sale.ID].Status = model.SaleDelivered

	_, err = f.service.Pay(sale.ID, actor, model.PaymentCash)
	require.NoError(t, err)

	movements, _ := f.movement.FindBySaleID(sale.ID)
	assert.Len(t, movements, 3, "payment fallback fires consumption exactly once")
}
