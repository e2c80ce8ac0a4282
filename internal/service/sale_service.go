package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"
	"github.com/AlexisDiaz000/las-perras/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrEmptyCart            = errors.New("sale must have at least one line")
	ErrReasonRequired       = errors.New("a non-empty reason is required")
	ErrPaymentMethodInvalid = errors.New("payment method must be cash or card")
	ErrConcurrentTransition = errors.New("sale was modified concurrently, reload and retry")
)

// TransitionError describes a rejected lifecycle move.
type TransitionError struct {
	From, To model.SaleStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// SaleLineInput is one cart line as the POS submits it.
type SaleLineInput struct {
	ProductID uuid.UUID           `json:"product_id" validate:"uuid_required"`
	Quantity  int                 `json:"quantity" validate:"required,gt=0"`
	Modifiers model.SaleModifiers `json:"modifiers"`
}

// CreateSaleRequest is the draft order the POS builds client-side. It becomes
// durable here, at creation; the cart before this call is purely client state.
type CreateSaleRequest struct {
	Description string          `json:"description"`
	Lines       []SaleLineInput `json:"lines"`
}

type SaleService interface {
	CreateDraft(req CreateSaleRequest, actorID uuid.UUID) (*model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
	GetSales(start, end *time.Time) ([]model.Sale, error)

	// SendToKitchen moves draft -> preparing and fires inventory consumption
	// (the kitchen-ticket policy: stock is committed when cooking starts).
	SendToKitchen(saleID, actorID uuid.UUID) error
	MarkReady(saleID, actorID uuid.UUID) error
	MarkDelivered(saleID, actorID uuid.UUID) error

	// Pay moves delivered -> paid. The total is recomputed from persisted
	// lines; a client-supplied figure is never trusted. If the sale somehow
	// reached payment without consuming (a direct-payment order), the engine
	// fires here instead — never twice, the idempotency guard sees to that.
	Pay(saleID, actorID uuid.UUID, paymentMethod string) (*model.Sale, error)

	// Void cancels an unpaid sale, reversing its movements only if any were
	// written. Paid sales go through Refund instead.
	Void(saleID uuid.UUID, reason string, actorID uuid.UUID) error

	// Refund reverses a paid sale's inventory effect and marks it refunded.
	Refund(saleID uuid.UUID, reason string, actorID uuid.UUID) error
}

type saleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	ledger      LedgerService
	engine      ConsumptionEngine
	wsHub       *ws.Hub
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	ledger LedgerService,
	engine ConsumptionEngine,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		ledger:      ledger,
		engine:      engine,
		wsHub:       hub,
	}
}

func (s *saleService) CreateDraft(req CreateSaleRequest, actorID uuid.UUID) (*model.Sale, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	sale := &model.Sale{
		Description: req.Description,
		SellerID:    actorID,
		Status:      model.SaleDraft,
		TotalAmount: decimal.Zero,
	}
	sale.CreatedBy = actorID.String()
	sale.UpdatedBy = actorID.String()

	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive")
		}
		product, err := s.productRepo.FindByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", line.ProductID)
		}
		if !product.Active {
			return nil, fmt.Errorf("product %q is inactive and cannot be sold", product.Name)
		}
		// The protein prompt is enforced at add time, before the line ever
		// reaches the ledger.
		if product.RequiresProteinChoice && (line.Modifiers.Protein == nil || *line.Modifiers.Protein == "") {
			return nil, fmt.Errorf("product %q: %w", product.Name, ErrMissingProtein)
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		item := model.SaleItem{
			ProductID:  product.ID,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: product.Price.Mul(qty),
			Modifiers:  line.Modifiers,
		}
		item.CreatedBy = actorID.String()
		sale.Items = append(sale.Items, item)
		sale.TotalAmount = sale.TotalAmount.Add(item.TotalPrice)
	}

	if err := s.saleRepo.Create(nil, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindByID(id)
}

func (s *saleService) GetSales(start, end *time.Time) ([]model.Sale, error) {
	return s.saleRepo.FindAll(start, end)
}

// transition performs one guarded, compare-and-set status move. Extra column
// updates ride on the same statement. Returns the loaded sale.
func (s *saleService) transition(tx *gorm.DB, saleID uuid.UUID, to model.SaleStatus, updates map[string]interface{}) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, ErrSaleNotFound
	}
	if !sale.Status.CanTransition(to) {
		return nil, &TransitionError{From: sale.Status, To: to}
	}

	ok, err := s.saleRepo.UpdateStatusCAS(tx, saleID, sale.Status, to, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentTransition
	}
	return sale, nil
}

func (s *saleService) SendToKitchen(saleID, actorID uuid.UUID) error {
	return runTx(s.saleRepo.DB(), func(tx *gorm.DB) error {
		sale, err := s.transition(tx, saleID, model.SalePreparing, map[string]interface{}{
			"updated_by": actorID.String(),
		})
		if err != nil {
			return err
		}
		if len(sale.Items) == 0 {
			return ErrEmptyCart
		}
		if err := s.engine.ConsumeForSale(tx, saleID, actorID, sale.Items); err != nil {
			return err
		}

		s.broadcastStatus(sale, model.SalePreparing)
		return nil
	})
}

func (s *saleService) MarkReady(saleID, actorID uuid.UUID) error {
	sale, err := s.transition(nil, saleID, model.SaleReady, map[string]interface{}{
		"updated_by": actorID.String(),
	})
	if err != nil {
		return err
	}

	// Fire-and-forget: the POS shows a "ready for pickup" toast.
	if s.wsHub != nil {
		s.wsHub.BroadcastEvent(map[string]interface{}{
			"type":         "order_ready",
			"sale_id":      sale.ID,
			"order_number": sale.OrderNumber,
			"message":      fmt.Sprintf("Pedido #%d listo para entregar", sale.OrderNumber),
		})
	}
	return nil
}

func (s *saleService) MarkDelivered(saleID, actorID uuid.UUID) error {
	sale, err := s.transition(nil, saleID, model.SaleDelivered, map[string]interface{}{
		"updated_by": actorID.String(),
	})
	if err != nil {
		return err
	}
	s.broadcastStatus(sale, model.SaleDelivered)
	return nil
}

func (s *saleService) Pay(saleID, actorID uuid.UUID, paymentMethod string) (*model.Sale, error) {
	if paymentMethod != model.PaymentCash && paymentMethod != model.PaymentCard {
		return nil, ErrPaymentMethodInvalid
	}

	var paid *model.Sale
	err := runTx(s.saleRepo.DB(), func(tx *gorm.DB) error {
		// Recompute from persisted lines; the stored or client-held total may
		// be stale.
		items, err := s.saleRepo.FindItems(saleID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.TotalPrice)
		}

		sale, err := s.transition(tx, saleID, model.SalePaid, map[string]interface{}{
			"payment_method": paymentMethod,
			"total_amount":   total,
			"updated_by":     actorID.String(),
		})
		if err != nil {
			return err
		}

		// Direct-payment fallback: consume here if the kitchen flow never
		// ran. ErrAlreadyConsumed is the normal case, not a failure.
		if err := s.engine.ConsumeForSale(tx, saleID, actorID, items); err != nil && !errors.Is(err, ErrAlreadyConsumed) {
			return err
		}

		sale.Status = model.SalePaid
		sale.PaymentMethod = paymentMethod
		sale.TotalAmount = total
		sale.Items = items
		paid = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (s *saleService) Void(saleID uuid.UUID, reason string, actorID uuid.UUID) error {
	if reason == "" {
		return ErrReasonRequired
	}

	return runTx(s.saleRepo.DB(), func(tx *gorm.DB) error {
		now := time.Now()
		sale, err := s.transition(tx, saleID, model.SaleVoided, map[string]interface{}{
			"void_reason": reason,
			"voided_at":   now,
			"voided_by":   actorID,
			"updated_by":  actorID.String(),
		})
		if err != nil {
			return err
		}

		// A draft that never reached the kitchen has nothing to reverse.
		movements, err := s.ledger.GetMovementsBySale(saleID)
		if err != nil {
			return err
		}
		if len(movements) == 0 {
			return nil
		}
		_, err = s.ledger.ReverseMovements(movements, fmt.Sprintf("Reverso venta %d: %s", sale.OrderNumber, reason), actorID)
		return err
	})
}

func (s *saleService) Refund(saleID uuid.UUID, reason string, actorID uuid.UUID) error {
	if reason == "" {
		return ErrReasonRequired
	}

	return runTx(s.saleRepo.DB(), func(tx *gorm.DB) error {
		now := time.Now()
		sale, err := s.transition(tx, saleID, model.SaleRefunded, map[string]interface{}{
			"void_reason": reason,
			"voided_at":   now,
			"voided_by":   actorID,
			"updated_by":  actorID.String(),
		})
		if err != nil {
			return err
		}

		// Payment implies consumption already happened; always reverse.
		movements, err := s.ledger.GetMovementsBySale(saleID)
		if err != nil {
			return err
		}
		_, err = s.ledger.ReverseMovements(movements, fmt.Sprintf("Reverso venta %d: %s", sale.OrderNumber, reason), actorID)
		return err
	})
}

func (s *saleService) broadcastStatus(sale *model.Sale, status model.SaleStatus) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastEvent(map[string]interface{}{
		"type":         "order_status",
		"sale_id":      sale.ID,
		"order_number": sale.OrderNumber,
		"status":       status,
	})
}
