package service

import (
	"errors"
	"fmt"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"
	"github.com/AlexisDiaz000/las-perras/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound    = errors.New("inventory item not found")
	ErrInvalidQuantity = errors.New("movement quantity must be greater than zero")
)

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with stub repositories).
func runTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.Transaction(fn)
}

// MovementInput is one ledger append request.
type MovementInput struct {
	ItemID     uuid.UUID
	Type       model.MovementType
	Quantity   decimal.Decimal
	Reason     string
	UserID     uuid.UUID
	SaleID     *uuid.UUID
	ReversalOf *uuid.UUID
	Group      *uuid.UUID
}

type LedgerService interface {
	CreateItem(item *model.InventoryItem, actorID string) error
	UpdateItem(id uuid.UUID, item *model.InventoryItem, actorID string) (*model.InventoryItem, error)
	GetItems() ([]model.InventoryItem, error)
	GetLowStockItems() ([]model.InventoryItem, error)
	GetMovements(itemID *uuid.UUID) ([]model.InventoryMovement, error)
	GetMovementsBySale(saleID uuid.UUID) ([]model.InventoryMovement, error)

	// RecordMovement appends one immutable ledger row and adjusts the item's
	// materialized stock in the same logical operation. tx may be nil, in
	// which case the append runs in its own transaction.
	RecordMovement(tx *gorm.DB, input MovementInput) (*model.InventoryMovement, error)

	// ReverseMovements writes an opposite-direction twin for every input
	// movement that is not itself a reversal, all under one fresh group.
	ReverseMovements(movements []model.InventoryMovement, reason string, actorID uuid.UUID) ([]model.InventoryMovement, error)

	// Stocktake reconciles physical counts against recorded stock, emitting
	// one adjustment movement per drifted item under a shared group.
	Stocktake(counts []StocktakeCount, actorID uuid.UUID) ([]model.InventoryMovement, error)
}

// StocktakeCount is one physically counted item.
type StocktakeCount struct {
	ItemID  uuid.UUID       `json:"item_id"`
	Counted decimal.Decimal `json:"counted"`
}

type ledgerService struct {
	itemRepo     repository.ItemRepository
	movementRepo repository.MovementRepository
}

func NewLedgerService(itemRepo repository.ItemRepository, movementRepo repository.MovementRepository) LedgerService {
	return &ledgerService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
	}
}

func (s *ledgerService) CreateItem(item *model.InventoryItem, actorID string) error {
	if errs := validator.ValidateStruct(item); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	existing, _ := s.itemRepo.FindByName(item.Name)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("inventory item name already exists")
	}

	item.CreatedBy = actorID
	item.UpdatedBy = actorID
	return s.itemRepo.Create(item)
}

// UpdateItem is a back-office correction: name, category, threshold, cost and
// a direct stock edit. Everyday stock changes go through movements instead.
func (s *ledgerService) UpdateItem(id uuid.UUID, item *model.InventoryItem, actorID string) (*model.InventoryItem, error) {
	existing, err := s.itemRepo.FindByID(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	existing.Name = item.Name
	existing.Category = item.Category
	existing.Unit = item.Unit
	existing.CurrentStock = item.CurrentStock
	existing.MinThreshold = item.MinThreshold
	existing.UnitCost = item.UnitCost
	existing.UpdatedBy = actorID

	if err := s.itemRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ledgerService) GetItems() ([]model.InventoryItem, error) {
	return s.itemRepo.FindAll()
}

func (s *ledgerService) GetLowStockItems() ([]model.InventoryItem, error) {
	return s.itemRepo.FindLowStock()
}

func (s *ledgerService) GetMovements(itemID *uuid.UUID) ([]model.InventoryMovement, error) {
	return s.movementRepo.FindAll(itemID)
}

func (s *ledgerService) GetMovementsBySale(saleID uuid.UUID) ([]model.InventoryMovement, error) {
	return s.movementRepo.FindBySaleID(saleID)
}

func (s *ledgerService) RecordMovement(tx *gorm.DB, input MovementInput) (*model.InventoryMovement, error) {
	if !input.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	movement := &model.InventoryMovement{
		ItemID:        input.ItemID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		Reason:        input.Reason,
		UserID:        input.UserID,
		SaleID:        input.SaleID,
		ReversalOf:    input.ReversalOf,
		MovementGroup: input.Group,
	}
	movement.CreatedBy = input.UserID.String()
	movement.UpdatedBy = input.UserID.String()

	write := func(tx *gorm.DB) error {
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return err
		}
		// No floor on stock: an out movement may push it negative, which the
		// low-stock report surfaces as a data/process problem.
		return s.itemRepo.AdjustStock(tx, input.ItemID, movement.SignedQuantity())
	}

	var err error
	if tx != nil {
		err = write(tx)
	} else {
		err = runTx(s.movementRepo.DB(), write)
	}
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *ledgerService) ReverseMovements(movements []model.InventoryMovement, reason string, actorID uuid.UUID) ([]model.InventoryMovement, error) {
	group := uuid.New()
	var reversals []model.InventoryMovement

	err := runTx(s.movementRepo.DB(), func(tx *gorm.DB) error {
		for _, m := range movements {
			if m.IsReversal() {
				continue
			}

			direction := model.MovementIn
			if m.Type == model.MovementIn {
				direction = model.MovementOut
			}

			original := m
			reversal, err := s.RecordMovement(tx, MovementInput{
				ItemID:     m.ItemID,
				Type:       direction,
				Quantity:   m.Quantity,
				Reason:     reason,
				UserID:     actorID,
				SaleID:     m.SaleID,
				ReversalOf: &original.ID,
				Group:      &group,
			})
			if err != nil {
				return err
			}
			reversals = append(reversals, *reversal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reversals, nil
}

func (s *ledgerService) Stocktake(counts []StocktakeCount, actorID uuid.UUID) ([]model.InventoryMovement, error) {
	group := uuid.New()
	var adjustments []model.InventoryMovement

	err := runTx(s.movementRepo.DB(), func(tx *gorm.DB) error {
		for _, count := range counts {
			item, err := s.itemRepo.FindByID(count.ItemID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrItemNotFound, count.ItemID)
			}

			diff := count.Counted.Sub(item.CurrentStock)
			if diff.IsZero() {
				continue
			}

			direction := model.MovementIn
			if diff.IsNegative() {
				direction = model.MovementOut
			}

			adj, err := s.RecordMovement(tx, MovementInput{
				ItemID:   item.ID,
				Type:     direction,
				Quantity: diff.Abs(),
				Reason:   fmt.Sprintf("Ajuste por conteo físico: %s", item.Name),
				UserID:   actorID,
				Group:    &group,
			})
			if err != nil {
				return err
			}
			adjustments = append(adjustments, *adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}
