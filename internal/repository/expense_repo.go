package repository

import (
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryTotal is one row of the expenses-by-category report.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type ExpenseRepository interface {
	Create(expense *model.Expense) error
	Update(expense *model.Expense) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Expense, error)
	FindAll(start, end *time.Time, category string) ([]model.Expense, error)
	TotalInRange(start, end time.Time) (decimal.Decimal, error)
	TotalsByCategory(start, end time.Time) ([]CategoryTotal, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db}
}

func (r *expenseRepo) Create(expense *model.Expense) error {
	return r.db.Create(expense).Error
}

func (r *expenseRepo) Update(expense *model.Expense) error {
	return r.db.Save(expense).Error
}

func (r *expenseRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Expense{}, "id = ?", id).Error
}

func (r *expenseRepo) FindByID(id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	err := r.db.Preload("User").First(&expense, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepo) FindAll(start, end *time.Time, category string) ([]model.Expense, error) {
	var expenses []model.Expense
	query := r.db.Preload("User").Order("expense_date DESC")
	if start != nil {
		query = query.Where("expense_date >= ?", *start)
	}
	if end != nil {
		query = query.Where("expense_date <= ?", *end)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) TotalInRange(start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("expense_date BETWEEN ? AND ?", start, end).
		Scan(&total).Error
	return total, err
}

func (r *expenseRepo) TotalsByCategory(start, end time.Time) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := r.db.Model(&model.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("expense_date BETWEEN ? AND ?", start, end).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}
