package repository

import (
	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(item *model.InventoryItem) error
	Update(item *model.InventoryItem) error
	FindAll() ([]model.InventoryItem, error)
	FindByID(id uuid.UUID) (*model.InventoryItem, error)
	FindByName(name string) (*model.InventoryItem, error)
	FindLowStock() ([]model.InventoryItem, error)
	AdjustStock(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(item *model.InventoryItem) error {
	return r.db.Create(item).Error
}

func (r *itemRepo) Update(item *model.InventoryItem) error {
	return r.db.Save(item).Error
}

func (r *itemRepo) FindAll() ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByName(name string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindLowStock returns items at or below their minimum threshold, lowest
// stock first.
func (r *itemRepo) FindLowStock() ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.
		Where("current_stock <= min_threshold").
		Order("current_stock ASC").
		Find(&items).Error
	return items, err
}

// AdjustStock applies a signed delta to the materialized current_stock.
// Runs on the caller's tx so the adjustment commits with the movement row.
func (r *itemRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.InventoryItem{}).
		Where("id = ?", id).
		Update("current_stock", gorm.Expr("current_stock + ?", delta)).Error
}
