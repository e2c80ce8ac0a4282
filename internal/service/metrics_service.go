package service

import (
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"

	"github.com/shopspring/decimal"
)

// revenueStatuses are the order statuses counted as revenue: paid plus
// delivered-but-unpaid, so the till reflects orders not yet reconciled.
var revenueStatuses = []model.SaleStatus{model.SalePaid, model.SaleDelivered}

// PartnerShare is one partner's slice of the (clamped) net profit.
type PartnerShare struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// Metrics is the aggregated financial picture for a date range. NetProfit is
// clamped at zero for display; NetProfitRaw keeps the sign so a loss-making
// period does not masquerade as break-even.
type Metrics struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	COGS          decimal.Decimal `json:"cogs"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	NetProfitRaw  decimal.Decimal `json:"net_profit_raw"`
	PartnerShares []PartnerShare  `json:"partner_shares"`
}

type MetricsService interface {
	GetMetrics(start, end time.Time) (*Metrics, error)
	GetLowStockItems() ([]model.InventoryItem, error)
	GetSalesByProduct(start, end time.Time) ([]repository.ProductSalesRow, error)
	GetExpensesByCategory(start, end time.Time) ([]repository.CategoryTotal, error)
}

type metricsService struct {
	saleRepo     repository.SaleRepository
	movementRepo repository.MovementRepository
	expenseRepo  repository.ExpenseRepository
	itemRepo     repository.ItemRepository
	partners     []PartnerShare
}

// NewMetricsService wires the aggregator. partners carries the static profit
// split (e.g. 70/30); amounts are filled in per query.
func NewMetricsService(
	saleRepo repository.SaleRepository,
	movementRepo repository.MovementRepository,
	expenseRepo repository.ExpenseRepository,
	itemRepo repository.ItemRepository,
	partners []PartnerShare,
) MetricsService {
	return &metricsService{
		saleRepo:     saleRepo,
		movementRepo: movementRepo,
		expenseRepo:  expenseRepo,
		itemRepo:     itemRepo,
		partners:     partners,
	}
}

// DefaultPartners is the stand's historical 70/30 split.
func DefaultPartners() []PartnerShare {
	return []PartnerShare{
		{Name: "partner1", Percentage: decimal.NewFromFloat(0.7)},
		{Name: "partner2", Percentage: decimal.NewFromFloat(0.3)},
	}
}

func (s *metricsService) GetMetrics(start, end time.Time) (*Metrics, error) {
	totalSales, err := s.saleRepo.TotalSalesInRange(start, end, revenueStatuses)
	if err != nil {
		return nil, err
	}

	cogs, err := s.movementRepo.COGSInRange(start, end)
	if err != nil {
		return nil, err
	}

	totalExpenses, err := s.expenseRepo.TotalInRange(start, end)
	if err != nil {
		return nil, err
	}

	raw := totalSales.Sub(cogs.Add(totalExpenses))
	clamped := raw
	if clamped.IsNegative() {
		clamped = decimal.Zero
	}

	shares := make([]PartnerShare, len(s.partners))
	for i, p := range s.partners {
		shares[i] = PartnerShare{
			Name:       p.Name,
			Percentage: p.Percentage,
			Amount:     clamped.Mul(p.Percentage),
		}
	}

	return &Metrics{
		TotalSales:    totalSales,
		TotalExpenses: totalExpenses,
		COGS:          cogs,
		NetProfit:     clamped,
		NetProfitRaw:  raw,
		PartnerShares: shares,
	}, nil
}

func (s *metricsService) GetLowStockItems() ([]model.InventoryItem, error) {
	return s.itemRepo.FindLowStock()
}

func (s *metricsService) GetSalesByProduct(start, end time.Time) ([]repository.ProductSalesRow, error) {
	return s.saleRepo.SalesByProductInRange(start, end)
}

func (s *metricsService) GetExpensesByCategory(start, end time.Time) ([]repository.CategoryTotal, error) {
	return s.expenseRepo.TotalsByCategory(start, end)
}
