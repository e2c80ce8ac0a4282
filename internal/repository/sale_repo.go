package repository

import (
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductSalesRow is one row of the sales-by-product report.
type ProductSalesRow struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindAll(start, end *time.Time) ([]model.Sale, error)
	FindItems(saleID uuid.UUID) ([]model.SaleItem, error)
	// UpdateStatusCAS performs a compare-and-set status transition:
	// the update applies only if the row still holds the expected status.
	// Returns false when another writer got there first.
	UpdateStatusCAS(tx *gorm.DB, id uuid.UUID, from, to model.SaleStatus, updates map[string]interface{}) (bool, error)
	TotalSalesInRange(start, end time.Time, statuses []model.SaleStatus) (decimal.Decimal, error)
	SalesByProductInRange(start, end time.Time) ([]ProductSalesRow, error)
	DB() *gorm.DB
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(sale).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items.Product").Preload("Seller").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(start, end *time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	query := r.db.Preload("Items").Preload("Seller").Order("created_at DESC")
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	err := query.Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindItems(saleID uuid.UUID) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := r.db.Preload("Product").Where("sale_id = ?", saleID).Find(&items).Error
	return items, err
}

func (r *saleRepo) UpdateStatusCAS(tx *gorm.DB, id uuid.UUID, from, to model.SaleStatus, updates map[string]interface{}) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	result := tx.Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *saleRepo) TotalSalesInRange(start, end time.Time, statuses []model.SaleStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Sale{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("created_at BETWEEN ? AND ? AND status IN ?", start, end, statuses).
		Scan(&total).Error
	return total, err
}

func (r *saleRepo) SalesByProductInRange(start, end time.Time) ([]ProductSalesRow, error) {
	var rows []ProductSalesRow
	err := r.db.Raw(`
		SELECT si.product_id, p.name,
		       COALESCE(SUM(si.total_price), 0) AS total,
		       COALESCE(SUM(si.quantity), 0) AS count
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.created_at BETWEEN ? AND ?
		  AND s.status IN ('paid', 'delivered')
		GROUP BY si.product_id, p.name
		ORDER BY total DESC
	`, start, end).Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) DB() *gorm.DB {
	return r.db
}
