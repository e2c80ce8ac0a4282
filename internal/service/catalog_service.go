package service

import (
	"errors"
	"fmt"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"
	"github.com/AlexisDiaz000/las-perras/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogService owns the menu: products and their recipes. The consumption
// engine only ever reads through GetRecipe.
type CatalogService interface {
	CreateProduct(product *model.Product, ingredients []model.ProductIngredient, actorID string) error
	UpdateProduct(id uuid.UUID, product *model.Product, ingredients []model.ProductIngredient, actorID string) (*model.Product, error)
	DeactivateProduct(id uuid.UUID, actorID string) error
	GetProducts(includeInactive bool) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	// GetRecipe returns the bill of materials for one unit. A product without
	// a recipe yields an empty slice; the caller decides whether that is a
	// warning (consumption) or just an empty form (back office).
	GetRecipe(productID uuid.UUID) ([]model.ProductIngredient, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	itemRepo    repository.ItemRepository
}

func NewCatalogService(productRepo repository.ProductRepository, itemRepo repository.ItemRepository) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		itemRepo:    itemRepo,
	}
}

func (s *catalogService) CreateProduct(product *model.Product, ingredients []model.ProductIngredient, actorID string) error {
	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	existing, _ := s.productRepo.FindByName(product.Name)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("product name already exists")
	}

	if err := s.validateIngredients(ingredients); err != nil {
		return err
	}

	product.CreatedBy = actorID
	product.UpdatedBy = actorID
	product.Active = true

	// Product and recipe land together or not at all.
	return runTx(s.productRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		return s.productRepo.ReplaceIngredients(tx, product.ID, ingredients)
	})
}

func (s *catalogService) UpdateProduct(id uuid.UUID, product *model.Product, ingredients []model.ProductIngredient, actorID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Category = product.Category
	existing.RequiresProteinChoice = product.RequiresProteinChoice
	existing.Active = product.Active
	existing.UpdatedBy = actorID

	if ingredients != nil {
		if err := s.validateIngredients(ingredients); err != nil {
			return nil, err
		}
	}

	err = runTx(s.productRepo.DB(), func(tx *gorm.DB) error {
		// Avoid re-saving the preloaded association rows alongside the
		// product itself.
		existing.Ingredients = nil
		if err := s.productRepo.Update(existing); err != nil {
			return err
		}
		if ingredients != nil {
			// Recipe updates swap the whole list: delete and recreate.
			return s.productRepo.ReplaceIngredients(tx, id, ingredients)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.productRepo.FindByID(id)
}

func (s *catalogService) DeactivateProduct(id uuid.UUID, actorID string) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return ErrProductNotFound
	}
	return s.productRepo.Deactivate(id, actorID)
}

func (s *catalogService) GetProducts(includeInactive bool) ([]model.Product, error) {
	return s.productRepo.FindAll(includeInactive)
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) GetRecipe(productID uuid.UUID) ([]model.ProductIngredient, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		return nil, ErrProductNotFound
	}
	return s.productRepo.GetRecipe(productID)
}

// validateIngredients checks every recipe line against the inventory: recipes
// reference items by id, established here at data-entry time, never by fuzzy
// name match at sale time.
func (s *catalogService) validateIngredients(ingredients []model.ProductIngredient) error {
	for _, ing := range ingredients {
		if !ing.Quantity.IsPositive() {
			return fmt.Errorf("ingredient quantity must be positive")
		}
		if _, err := s.itemRepo.FindByID(ing.ItemID); err != nil {
			return fmt.Errorf("%w: %s", ErrItemNotFound, ing.ItemID)
		}
	}
	return nil
}
