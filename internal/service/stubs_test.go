package service

import (
	"errors"
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
//
// In-memory repositories. DB() returns nil, which makes runTx call the body
// directly instead of opening a real transaction.

var errStubNotFound = errors.New("not found")

type stubItemRepo struct {
	items map[uuid.UUID]*model.InventoryItem
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[uuid.UUID]*model.InventoryItem)}
}

func (r *stubItemRepo) add(name, category string, stock, threshold, cost float64) *model.InventoryItem {
	item := &model.InventoryItem{
		Name:         name,
		Category:     category,
		Unit:         model.UnitWeight,
		CurrentStock: decimal.NewFromFloat(stock),
		MinThreshold: decimal.NewFromFloat(threshold),
		UnitCost:     decimal.NewFromFloat(cost),
	}
	item.ID = uuid.New()
	r.items[item.ID] = item
	return item
}

func (r *stubItemRepo) Create(item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) Update(item *model.InventoryItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return errStubNotFound
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) FindAll() ([]model.InventoryItem, error) {
	out := make([]model.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *stubItemRepo) FindByID(id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, errStubNotFound
	}
	return item, nil
}

func (r *stubItemRepo) FindByName(name string) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.Name == name {
			return item, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubItemRepo) FindLowStock() ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.CurrentStock.LessThanOrEqual(item.MinThreshold) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubItemRepo) AdjustStock(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	item, ok := r.items[id]
	if !ok {
		return errStubNotFound
	}
	item.CurrentStock = item.CurrentStock.Add(delta)
	return nil
}

var _ repository.ItemRepository = (*stubItemRepo)(nil)

type stubMovementRepo struct {
	movements []*model.InventoryMovement
	items     *stubItemRepo
}

func newStubMovementRepo(items *stubItemRepo) *stubMovementRepo {
	return &stubMovementRepo{items: items}
}

func (r *stubMovementRepo) Create(_ *gorm.DB, movement *model.InventoryMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = time.Now()
	r.movements = append(r.movements, movement)
	return nil
}

func (r *stubMovementRepo) FindAll(itemID *uuid.UUID) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if itemID != nil && m.ItemID != *itemID {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMovementRepo) FindBySaleID(saleID uuid.UUID) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) HasConsumption(_ *gorm.DB, saleID uuid.UUID) (bool, error) {
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID && m.ReversalOf == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMovementRepo) COGSInRange(start, end time.Time) (decimal.Decimal, error) {
	reversed := make(map[uuid.UUID]bool)
	for _, m := range r.movements {
		if m.ReversalOf != nil {
			reversed[*m.ReversalOf] = true
		}
	}

	total := decimal.Zero
	for _, m := range r.movements {
		if m.Type != model.MovementOut || m.ReversalOf != nil || reversed[m.ID] {
			continue
		}
		if m.CreatedAt.Before(start) || m.CreatedAt.After(end) {
			continue
		}
		item, ok := r.items.items[m.ItemID]
		if !ok {
			continue
		}
		total = total.Add(m.Quantity.Mul(item.UnitCost))
	}
	return total, nil
}

func (r *stubMovementRepo) DB() *gorm.DB { return nil }

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	recipes  map[uuid.UUID][]model.ProductIngredient
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		recipes:  make(map[uuid.UUID][]model.ProductIngredient),
	}
}

func (r *stubProductRepo) add(name string, price int64, requiresProtein bool, recipe []model.ProductIngredient) *model.Product {
	product := &model.Product{
		Name:                  name,
		Price:                 decimal.NewFromInt(price),
		RequiresProteinChoice: requiresProtein,
		Active:                true,
	}
	product.ID = uuid.New()
	r.products[product.ID] = product
	r.recipes[product.ID] = recipe
	return product
}

func (r *stubProductRepo) Create(_ *gorm.DB, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) Update(product *model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return errStubNotFound
	}
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) FindAll(includeInactive bool) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if !includeInactive && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errStubNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByName(name string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubProductRepo) GetRecipe(productID uuid.UUID) ([]model.ProductIngredient, error) {
	return r.recipes[productID], nil
}

func (r *stubProductRepo) ReplaceIngredients(_ *gorm.DB, productID uuid.UUID, ingredients []model.ProductIngredient) error {
	r.recipes[productID] = ingredients
	return nil
}

func (r *stubProductRepo) Deactivate(id uuid.UUID, actor string) error {
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Active = false
	p.UpdatedBy = actor
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) Create(_ *gorm.DB, sale *model.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.OrderNumber = len(r.sales) + 1
	sale.CreatedAt = time.Now()
	r.sales[sale.ID] = sale
	return nil
}

func (r *stubSaleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, errStubNotFound
	}
	copied := *sale
	return &copied, nil
}

func (r *stubSaleRepo) FindAll(start, end *time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for _, sale := range r.sales {
		if start != nil && sale.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && sale.CreatedAt.After(*end) {
			continue
		}
		out = append(out, *sale)
	}
	return out, nil
}

func (r *stubSaleRepo) FindItems(saleID uuid.UUID) ([]model.SaleItem, error) {
	sale, ok := r.sales[saleID]
	if !ok {
		return nil, errStubNotFound
	}
	return sale.Items, nil
}

func (r *stubSaleRepo) UpdateStatusCAS(_ *gorm.DB, id uuid.UUID, from, to model.SaleStatus, updates map[string]interface{}) (bool, error) {
	sale, ok := r.sales[id]
	if !ok {
		return false, errStubNotFound
	}
	if sale.Status != from {
		return false, nil
	}
	sale.Status = to
	if v, ok := updates["payment_method"].(string); ok {
		sale.PaymentMethod = v
	}
	if v, ok := updates["total_amount"].(decimal.Decimal); ok {
		sale.TotalAmount = v
	}
	if v, ok := updates["void_reason"].(string); ok {
		sale.VoidReason = v
	}
	if v, ok := updates["voided_at"].(time.Time); ok {
		sale.VoidedAt = &v
	}
	if v, ok := updates["voided_by"].(uuid.UUID); ok {
		sale.VoidedBy = &v
	}
	return true, nil
}

func (r *stubSaleRepo) TotalSalesInRange(start, end time.Time, statuses []model.SaleStatus) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, sale := range r.sales {
		if sale.CreatedAt.Before(start) || sale.CreatedAt.After(end) {
			continue
		}
		for _, status := range statuses {
			if sale.Status == status {
				total = total.Add(sale.TotalAmount)
				break
			}
		}
	}
	return total, nil
}

func (r *stubSaleRepo) SalesByProductInRange(start, end time.Time) ([]repository.ProductSalesRow, error) {
	byProduct := make(map[uuid.UUID]*repository.ProductSalesRow)
	for _, sale := range r.sales {
		if sale.Status != model.SalePaid && sale.Status != model.SaleDelivered {
			continue
		}
		if sale.CreatedAt.Before(start) || sale.CreatedAt.After(end) {
			continue
		}
		for _, item := range sale.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &repository.ProductSalesRow{ProductID: item.ProductID, Total: decimal.Zero}
				byProduct[item.ProductID] = row
			}
			row.Count += item.Quantity
			row.Total = row.Total.Add(item.TotalPrice)
		}
	}
	out := make([]repository.ProductSalesRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *stubExpenseRepo) Create(expense *model.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	r.expenses[expense.ID] = expense
	return nil
}

func (r *stubExpenseRepo) Update(expense *model.Expense) error {
	if _, ok := r.expenses[expense.ID]; !ok {
		return errStubNotFound
	}
	r.expenses[expense.ID] = expense
	return nil
}

func (r *stubExpenseRepo) Delete(id uuid.UUID) error {
	delete(r.expenses, id)
	return nil
}

func (r *stubExpenseRepo) FindByID(id uuid.UUID) (*model.Expense, error) {
	expense, ok := r.expenses[id]
	if !ok {
		return nil, errStubNotFound
	}
	return expense, nil
}

func (r *stubExpenseRepo) FindAll(start, end *time.Time, category string) ([]model.Expense, error) {
	var out []model.Expense
	for _, expense := range r.expenses {
		if category != "" && expense.Category != category {
			continue
		}
		out = append(out, *expense)
	}
	return out, nil
}

func (r *stubExpenseRepo) TotalInRange(start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, expense := range r.expenses {
		total = total.Add(expense.Amount)
	}
	return total, nil
}

func (r *stubExpenseRepo) TotalsByCategory(start, end time.Time) ([]repository.CategoryTotal, error) {
	byCategory := make(map[string]decimal.Decimal)
	for _, expense := range r.expenses {
		byCategory[expense.Category] = byCategory[expense.Category].Add(expense.Amount)
	}
	out := make([]repository.CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		out = append(out, repository.CategoryTotal{Category: category, Total: total})
	}
	return out, nil
}

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)
