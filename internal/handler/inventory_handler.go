package handler

import (
	"errors"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	ledger service.LedgerService
}

func NewInventoryHandler(ledger service.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// getUserID extracts the actor from the JWT context (set by RequireAuth).
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

// getActorUUID is getUserID for call sites that need a real UUID.
func getActorUUID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getUserID(c))
}

// CreateItem registers a new inventory item.
// POST /api/v1/inventory/items
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var item model.InventoryItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.ledger.CreateItem(&item, getUserID(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Item created", "data": item})
}

// UpdateItem edits an item's master data (name, unit, threshold, cost).
// PUT /api/v1/inventory/items/:id
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item model.InventoryItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.ledger.UpdateItem(itemID, &item, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Item updated", "data": updated})
}

// GetItems returns every inventory item with its current stock.
// GET /api/v1/inventory/items
func (h *InventoryHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.ledger.GetItems()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(items)
}

// GetLowStockItems returns items at or below their minimum threshold.
// GET /api/v1/inventory/items/low-stock
func (h *InventoryHandler) GetLowStockItems(c *fiber.Ctx) error {
	items, err := h.ledger.GetLowStockItems()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(items)
}

// MovementRequest is a manual ledger append (restock, waste, correction).
type MovementRequest struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// CreateMovement appends a manual movement to the ledger.
// POST /api/v1/inventory/movements
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var req MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	movementType := model.MovementType(req.Type)
	if movementType != model.MovementIn && movementType != model.MovementOut {
		return c.Status(400).JSON(fiber.Map{"error": "type must be 'in' or 'out'"})
	}
	if req.Reason == "" {
		return c.Status(400).JSON(fiber.Map{"error": "reason is required"})
	}

	actorID, err := getActorUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	movement, err := h.ledger.RecordMovement(nil, service.MovementInput{
		ItemID:   req.ItemID,
		Type:     movementType,
		Quantity: req.Quantity,
		Reason:   req.Reason,
		UserID:   actorID,
	})
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": movement})
}

// GetMovements returns the ledger, optionally filtered by item.
// GET /api/v1/inventory/movements?item_id=...
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	var itemID *uuid.UUID
	if raw := c.Query("item_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid item_id"})
		}
		itemID = &parsed
	}

	movements, err := h.ledger.GetMovements(itemID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(movements)
}

// StocktakeRequest carries the physical counts of one reconciliation pass.
type StocktakeRequest struct {
	Counts []service.StocktakeCount `json:"counts"`
}

// Stocktake reconciles counted stock against the ledger.
// POST /api/v1/inventory/stocktake
func (h *InventoryHandler) Stocktake(c *fiber.Ctx) error {
	var req StocktakeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if len(req.Counts) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "counts must not be empty"})
	}

	actorID, err := getActorUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	adjustments, err := h.ledger.Stocktake(req.Counts, actorID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":     "Stocktake applied",
		"adjustments": adjustments,
	})
}
