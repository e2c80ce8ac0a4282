package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrAlreadyConsumed = errors.New("sale has already consumed inventory")

// ConsumptionEngine translates a finalized sale's lines into out movements
// against the inventory ledger, exactly once per sale.
type ConsumptionEngine interface {
	// ConsumeForSale resolves every line's effective ingredients and writes
	// the grouped out movements on tx. Either every movement of the run is
	// written or none: validation failures (missing protein, unknown
	// protein) abort the run before any write, and tx rolls the rest back.
	ConsumeForSale(tx *gorm.DB, saleID, actorID uuid.UUID, lines []model.SaleItem) error
}

type consumptionEngine struct {
	productRepo    repository.ProductRepository
	itemRepo       repository.ItemRepository
	movementRepo   repository.MovementRepository
	ledger         LedgerService
	proteinPortion decimal.Decimal
}

func NewConsumptionEngine(
	productRepo repository.ProductRepository,
	itemRepo repository.ItemRepository,
	movementRepo repository.MovementRepository,
	ledger LedgerService,
	proteinPortion decimal.Decimal,
) ConsumptionEngine {
	if proteinPortion.IsZero() {
		proteinPortion = DefaultProteinPortion
	}
	return &consumptionEngine{
		productRepo:    productRepo,
		itemRepo:       itemRepo,
		movementRepo:   movementRepo,
		ledger:         ledger,
		proteinPortion: proteinPortion,
	}
}

// plannedMovement is one fully-resolved decrement, ready to write.
type plannedMovement struct {
	itemID   uuid.UUID
	quantity decimal.Decimal
	reason   string
}

func (e *consumptionEngine) ConsumeForSale(tx *gorm.DB, saleID, actorID uuid.UUID, lines []model.SaleItem) error {
	// Idempotency guard: one consumption run per sale, ever.
	consumed, err := e.movementRepo.HasConsumption(tx, saleID)
	if err != nil {
		return err
	}
	if consumed {
		return ErrAlreadyConsumed
	}

	// Resolve every line before writing anything, so a validation failure on
	// line 3 never leaves lines 1 and 2 half-consumed.
	var plan []plannedMovement
	for _, line := range lines {
		product, err := e.productRepo.FindByID(line.ProductID)
		if err != nil {
			// Degraded, not fatal: a catalog gap must not block the sale.
			log.Printf("consumption: sale %s references unknown product %s, line skipped", saleID, line.ProductID)
			continue
		}

		recipe, err := e.productRepo.GetRecipe(product.ID)
		if err != nil {
			return err
		}
		if len(recipe) == 0 && !product.RequiresProteinChoice {
			log.Printf("consumption: product %q has no recipe, line skipped (stock will not be decremented)", product.Name)
			continue
		}

		var proteinItem *model.InventoryItem
		if line.Modifiers.Protein != nil && *line.Modifiers.Protein != "" {
			proteinItem, err = e.itemRepo.FindByName(*line.Modifiers.Protein)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrUnknownProtein, *line.Modifiers.Protein)
			}
		}

		effective, err := ResolveEffectiveIngredients(ResolveInput{
			Recipe:                recipe,
			RequiresProteinChoice: product.RequiresProteinChoice,
			ProteinItem:           proteinItem,
			Modifiers:             line.Modifiers,
			ProteinPortion:        e.proteinPortion,
		})
		if err != nil {
			return fmt.Errorf("line %q: %w", product.Name, err)
		}

		lineQty := decimal.NewFromInt(int64(line.Quantity))
		for _, ing := range effective {
			plan = append(plan, plannedMovement{
				itemID:   ing.ItemID,
				quantity: ing.Quantity.Mul(lineQty),
				reason:   fmt.Sprintf("Venta %s", product.Name),
			})
		}
	}

	group := uuid.New()
	saleRef := saleID
	for _, p := range plan {
		if _, err := e.ledger.RecordMovement(tx, MovementInput{
			ItemID:   p.itemID,
			Type:     model.MovementOut,
			Quantity: p.quantity,
			Reason:   p.reason,
			UserID:   actorID,
			SaleID:   &saleRef,
			Group:    &group,
		}); err != nil {
			return err
		}
	}
	return nil
}
