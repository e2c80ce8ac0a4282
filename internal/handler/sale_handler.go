package handler

import (
	"errors"
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SaleHandler struct {
	sales service.SaleService
}

func NewSaleHandler(sales service.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// saleErrorStatus maps service errors to HTTP status codes. Transition
// conflicts are 409 so the POS can reload the order instead of blaming the
// user's input.
func saleErrorStatus(err error) int {
	var te *service.TransitionError
	switch {
	case errors.Is(err, service.ErrSaleNotFound):
		return 404
	case errors.As(err, &te), errors.Is(err, service.ErrConcurrentTransition):
		return 409
	default:
		return 400
	}
}

// CreateSale persists a draft order built on the POS.
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, err := getActorUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	sale, err := h.sales.CreateDraft(req, actorID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale created", "data": sale})
}

// GetSales lists sales, optionally bounded by ?start and ?end (RFC 3339).
// GET /api/v1/sales
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	start, end, err := parseRangeQuery(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	sales, err := h.sales.GetSales(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

// GetSale returns one sale with its lines.
// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.sales.GetSale(saleID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
	}
	return c.JSON(sale)
}

// SendToKitchen moves a draft to preparing and consumes inventory.
// POST /api/v1/sales/:id/send
func (h *SaleHandler) SendToKitchen(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.sales.SendToKitchen, "Sale sent to kitchen")
}

// MarkReady moves a preparing sale to ready.
// POST /api/v1/sales/:id/ready
func (h *SaleHandler) MarkReady(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.sales.MarkReady, "Sale marked ready")
}

// MarkDelivered moves a ready sale to delivered.
// POST /api/v1/sales/:id/deliver
func (h *SaleHandler) MarkDelivered(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.sales.MarkDelivered, "Sale delivered")
}

func (h *SaleHandler) simpleTransition(c *fiber.Ctx, fn func(saleID, actorID uuid.UUID) error, message string) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	actorID, err := getActorUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := fn(saleID, actorID); err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": message})
}

// PayRequest carries the payment method chosen at the till.
type PayRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Pay settles a delivered sale.
// POST /api/v1/sales/:id/pay
func (h *SaleHandler) Pay(c *fiber.Ctx) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req PayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, err := getActorUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	sale, err := h.sales.Pay(saleID, actorID, req.PaymentMethod)
	if err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Sale paid", "data": sale})
}

// VoidRequest carries the mandatory justification for a void or refund.
type VoidRequest struct {
	Reason string `json:"reason"`
}

// Void cancels an unpaid sale.
// POST /api/v1/sales/:id/void
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	return h.reverseOperation(c, h.sales.Void, "Sale voided")
}

// Refund reverses a paid sale.
// POST /api/v1/sales/:id/refund
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	return h.reverseOperation(c, h.sales.Refund, "Sale refunded")
}

func (h *SaleHandler) reverseOperation(c *fiber.Ctx, fn func(saleID uuid.UUID, reason string, actorID uuid.UUID) error, message string) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req VoidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, err := getActorUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := fn(saleID, req.Reason, actorID); err != nil {
		return c.Status(saleErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": message})
}

// parseRangeQuery reads optional ?start / ?end RFC 3339 query params.
func parseRangeQuery(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, errors.New("start must be RFC 3339")
		}
		start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, errors.New("end must be RFC 3339")
		}
		end = &t
	}
	return start, end, nil
}
