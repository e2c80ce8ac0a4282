package handler

import (
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	metrics service.MetricsService
}

func NewDashboardHandler(metrics service.MetricsService) *DashboardHandler {
	return &DashboardHandler{metrics: metrics}
}

// rangeFromQuery resolves ?range (today|7d|1m|3m) or explicit ?start/?end into
// a concrete window. Default is today, the stand's working unit.
func rangeFromQuery(c *fiber.Ctx) (time.Time, time.Time) {
	if start, end, err := parseRangeQuery(c); err == nil && start != nil && end != nil {
		return *start, *end
	}

	now := time.Now()
	switch c.Query("range", "today") {
	case "7d":
		return now.AddDate(0, 0, -7), now
	case "1m":
		return now.AddDate(0, -1, 0), now
	case "3m":
		return now.AddDate(0, -3, 0), now
	default: // today
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return startOfDay, now
	}
}

// GetMetrics returns the aggregated financial picture for a window: sales,
// expenses, cost of goods sold, net profit and the partner split.
// GET /api/v1/dashboard/metrics
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	start, end := rangeFromQuery(c)

	metrics, err := h.metrics.GetMetrics(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"start": start,
		"end":   end,
		"data":  metrics,
	})
}

// GetSalesByProduct returns per-product units and revenue for a window.
// GET /api/v1/dashboard/sales-by-product
func (h *DashboardHandler) GetSalesByProduct(c *fiber.Ctx) error {
	start, end := rangeFromQuery(c)

	rows, err := h.metrics.GetSalesByProduct(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rows)
}

// GetExpensesByCategory returns expense totals grouped by category.
// GET /api/v1/dashboard/expenses-by-category
func (h *DashboardHandler) GetExpensesByCategory(c *fiber.Ctx) error {
	start, end := rangeFromQuery(c)

	rows, err := h.metrics.GetExpensesByCategory(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rows)
}

// GetLowStock returns items at or below threshold, most urgent first.
// GET /api/v1/dashboard/low-stock
func (h *DashboardHandler) GetLowStock(c *fiber.Ctx) error {
	items, err := h.metrics.GetLowStockItems()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}
