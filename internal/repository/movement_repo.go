package repository

import (
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(tx *gorm.DB, movement *model.InventoryMovement) error
	FindAll(itemID *uuid.UUID) ([]model.InventoryMovement, error)
	FindBySaleID(saleID uuid.UUID) ([]model.InventoryMovement, error)
	// HasConsumption reports whether any non-reversal movement exists for the
	// sale. Read on the caller's tx so the idempotency guard and the writes
	// it protects share one snapshot.
	HasConsumption(tx *gorm.DB, saleID uuid.UUID) (bool, error)
	COGSInRange(start, end time.Time) (decimal.Decimal, error)
	DB() *gorm.DB
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(tx *gorm.DB, movement *model.InventoryMovement) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(movement).Error
}

func (r *movementRepo) FindAll(itemID *uuid.UUID) ([]model.InventoryMovement, error) {
	var movements []model.InventoryMovement
	query := r.db.Preload("Item").Order("created_at DESC")
	if itemID != nil {
		query = query.Where("item_id = ?", *itemID)
	}
	err := query.Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindBySaleID(saleID uuid.UUID) ([]model.InventoryMovement, error) {
	var movements []model.InventoryMovement
	err := r.db.Preload("Item").
		Where("sale_id = ?", saleID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) HasConsumption(tx *gorm.DB, saleID uuid.UUID) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&model.InventoryMovement{}).
		Where("sale_id = ? AND reversal_of IS NULL", saleID).
		Count(&count).Error
	return count > 0, err
}

// COGSInRange sums quantity * unit_cost over out movements in range,
// excluding reversals and anything a reversal points at (a reversed
// consumption contributes no cost).
func (r *movementRepo) COGSInRange(start, end time.Time) (decimal.Decimal, error) {
	var cogs decimal.Decimal
	err := r.db.Raw(`
		SELECT COALESCE(SUM(m.quantity * i.unit_cost), 0)
		FROM inventory_movements m
		JOIN inventory_items i ON i.id = m.item_id
		WHERE m.type = 'out'
		  AND m.reversal_of IS NULL
		  AND m.created_at BETWEEN ? AND ?
		  AND NOT EXISTS (
			SELECT 1 FROM inventory_movements r WHERE r.reversal_of = m.id
		  )
	`, start, end).Scan(&cogs).Error
	return cogs, err
}

func (r *movementRepo) DB() *gorm.DB {
	return r.db
}
