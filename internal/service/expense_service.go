package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"
	"github.com/AlexisDiaz000/las-perras/pkg/validator"

	"github.com/google/uuid"
)

var ErrExpenseNotFound = errors.New("expense not found")

type ExpenseService interface {
	CreateExpense(expense *model.Expense, actorID uuid.UUID) error
	UpdateExpense(id uuid.UUID, expense *model.Expense, actorID uuid.UUID) (*model.Expense, error)
	DeleteExpense(id uuid.UUID) error
	GetExpenses(start, end *time.Time, category string) ([]model.Expense, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
}

func NewExpenseService(expenseRepo repository.ExpenseRepository) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo}
}

func validCategory(category string) bool {
	for _, c := range model.ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *expenseService) CreateExpense(expense *model.Expense, actorID uuid.UUID) error {
	if errs := validator.ValidateStruct(expense); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if !expense.Amount.IsPositive() {
		return errors.New("expense amount must be positive")
	}
	if !validCategory(expense.Category) {
		return fmt.Errorf("unknown expense category %q", expense.Category)
	}

	expense.UserID = actorID
	expense.CreatedBy = actorID.String()
	expense.UpdatedBy = actorID.String()
	return s.expenseRepo.Create(expense)
}

func (s *expenseService) UpdateExpense(id uuid.UUID, expense *model.Expense, actorID uuid.UUID) (*model.Expense, error) {
	existing, err := s.expenseRepo.FindByID(id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}

	if !expense.Amount.IsPositive() {
		return nil, errors.New("expense amount must be positive")
	}
	if !validCategory(expense.Category) {
		return nil, fmt.Errorf("unknown expense category %q", expense.Category)
	}

	existing.ExpenseDate = expense.ExpenseDate
	existing.Description = expense.Description
	existing.Category = expense.Category
	existing.Amount = expense.Amount
	existing.ReceiptURL = expense.ReceiptURL
	existing.UpdatedBy = actorID.String()

	if err := s.expenseRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *expenseService) DeleteExpense(id uuid.UUID) error {
	if _, err := s.expenseRepo.FindByID(id); err != nil {
		return ErrExpenseNotFound
	}
	return s.expenseRepo.Delete(id)
}

func (s *expenseService) GetExpenses(start, end *time.Time, category string) ([]model.Expense, error) {
	return s.expenseRepo.FindAll(start, end, category)
}
