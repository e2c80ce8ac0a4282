package service

import (
	"testing"
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metricsFixture struct {
	items    *stubItemRepo
	movement *stubMovementRepo
	sales    *stubSaleRepo
	expenses *stubExpenseRepo
	ledger   LedgerService
	service  MetricsService
}

func newMetricsFixture() *metricsFixture {
	items := newStubItemRepo()
	movement := newStubMovementRepo(items)
	sales := newStubSaleRepo()
	expenses := newStubExpenseRepo()
	return &metricsFixture{
		items:    items,
		movement: movement,
		sales:    sales,
		expenses: expenses,
		ledger:   NewLedgerService(items, movement),
		service:  NewMetricsService(sales, movement, expenses, items, DefaultPartners()),
	}
}

func (f *metricsFixture) addSale(status model.SaleStatus, total int64) *model.Sale {
	sale := &model.Sale{
		Status:      status,
		TotalAmount: decimal.NewFromInt(total),
		SellerID:    uuid.New(),
	}
	f.sales.Create(nil, sale)
	return sale
}

func (f *metricsFixture) addExpense(category string, amount int64) {
	f.expenses.Create(&model.Expense{
		ExpenseDate: time.Now(),
		Category:    category,
		Amount:      decimal.NewFromInt(amount),
		UserID:      uuid.New(),
	})
}

func window() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func TestMetricsFormula(t *testing.T) {
	f := newMetricsFixture()
	start, end := window()

	// Revenue: paid and delivered count, draft does not.
	f.addSale(model.SalePaid, 10000)
	f.addSale(model.SaleDelivered, 5000)
	f.addSale(model.SaleDraft, 99999)

	// COGS: 3 x 500 cost out movement.
	cheese := f.items.add("Queso", "Complementos", 1000, 200, 500)
	_, err := f.ledger.RecordMovement(nil, MovementInput{
		ItemID:   cheese.ID,
		Type:     model.MovementOut,
		Quantity: decimal.NewFromInt(3),
		Reason:   "Venta Perrita",
		UserID:   uuid.New(),
	})
	require.NoError(t, err)

	f.addExpense("Transporte", 2000)

	metrics, err := f.service.GetMetrics(start, end)
	require.NoError(t, err)

	assert.True(t, metrics.TotalSales.Equal(decimal.NewFromInt(15000)))
	assert.True(t, metrics.COGS.Equal(decimal.NewFromInt(1500)))
	assert.True(t, metrics.TotalExpenses.Equal(decimal.NewFromInt(2000)))

	// 15000 - (1500 + 2000)
	assert.True(t, metrics.NetProfit.Equal(decimal.NewFromInt(11500)))
	assert.True(t, metrics.NetProfitRaw.Equal(decimal.NewFromInt(11500)))

	require.Len(t, metrics.PartnerShares, 2)
	assert.True(t, metrics.PartnerShares[0].Amount.Equal(decimal.NewFromInt(8050)))
	assert.True(t, metrics.PartnerShares[1].Amount.Equal(decimal.NewFromInt(3450)))
}

func TestMetricsClampNegativeProfit(t *testing.T) {
	f := newMetricsFixture()
	start, end := window()

	f.addSale(model.SalePaid, 1000)
	f.addExpense("Servicios", 5000)

	metrics, err := f.service.GetMetrics(start, end)
	require.NoError(t, err)

	// Display profit clamps at zero; the raw figure keeps the loss visible.
	assert.True(t, metrics.NetProfit.IsZero())
	assert.True(t, metrics.NetProfitRaw.Equal(decimal.NewFromInt(-4000)))
	for _, share := range metrics.PartnerShares {
		assert.True(t, share.Amount.IsZero(), "no profit, nothing to split")
	}
}

func TestMetricsExcludeReversedConsumption(t *testing.T) {
	f := newMetricsFixture()
	start, end := window()
	actor := uuid.New()

	cheese := f.items.add("Queso", "Complementos", 1000, 200, 500)
	movement, err := f.ledger.RecordMovement(nil, MovementInput{
		ItemID:   cheese.ID,
		Type:     model.MovementOut,
		Quantity: decimal.NewFromInt(3),
		Reason:   "Venta Perrita",
		UserID:   actor,
	})
	require.NoError(t, err)

	_, err = f.ledger.ReverseMovements([]model.InventoryMovement{*movement}, "Reverso venta 1: anulada", actor)
	require.NoError(t, err)

	metrics, err := f.service.GetMetrics(start, end)
	require.NoError(t, err)
	assert.True(t, metrics.COGS.IsZero(), "a reversed consumption contributes no cost")
}

func TestLowStockBoundary(t *testing.T) {
	f := newMetricsFixture()

	f.items.add("Pan Perro", "Panadería", 5, 10, 700)  // below
	f.items.add("Salchicha", "Proteínas", 10, 10, 900) // exactly at threshold
	f.items.add("Queso", "Complementos", 11, 10, 20)   // above

	low, err := f.service.GetLowStockItems()
	require.NoError(t, err)
	require.Len(t, low, 2)

	names := []string{low[0].Name, low[1].Name}
	assert.Contains(t, names, "Pan Perro")
	assert.Contains(t, names, "Salchicha")
}

func TestExpensesByCategory(t *testing.T) {
	f := newMetricsFixture()
	start, end := window()

	f.addExpense("Insumos", 3000)
	f.addExpense("Insumos", 2000)
	f.addExpense("Transporte", 1000)

	rows, err := f.service.GetExpensesByCategory(start, end)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	totals := map[string]decimal.Decimal{}
	for _, row := range rows {
		totals[row.Category] = row.Total
	}
	assert.True(t, totals["Insumos"].Equal(decimal.NewFromInt(5000)))
	assert.True(t, totals["Transporte"].Equal(decimal.NewFromInt(1000)))
}
