package repository

import (
	"github.com/AlexisDiaz000/las-perras/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	Update(product *model.Product) error
	FindAll(includeInactive bool) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByName(name string) (*model.Product, error)
	// GetRecipe returns the bill of materials for one unit of the product.
	// An empty slice is a valid (if suspicious) answer, not an error.
	GetRecipe(productID uuid.UUID) ([]model.ProductIngredient, error)
	ReplaceIngredients(tx *gorm.DB, productID uuid.UUID, ingredients []model.ProductIngredient) error
	Deactivate(id uuid.UUID, actor string) error
	DB() *gorm.DB
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(product).Error
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) FindAll(includeInactive bool) ([]model.Product, error) {
	var products []model.Product
	query := r.db.Preload("Ingredients.Item").Order("name ASC")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	err := query.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Ingredients.Item").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByName(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Ingredients.Item").First(&product, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetRecipe(productID uuid.UUID) ([]model.ProductIngredient, error) {
	var ingredients []model.ProductIngredient
	err := r.db.Preload("Item").
		Where("product_id = ?", productID).
		Find(&ingredients).Error
	return ingredients, err
}

// ReplaceIngredients swaps the recipe wholesale: delete all rows, recreate.
func (r *productRepo) ReplaceIngredients(tx *gorm.DB, productID uuid.UUID, ingredients []model.ProductIngredient) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Unscoped().Where("product_id = ?", productID).Delete(&model.ProductIngredient{}).Error; err != nil {
		return err
	}
	for i := range ingredients {
		ingredients[i].ProductID = productID
		if err := tx.Create(&ingredients[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *productRepo) Deactivate(id uuid.UUID, actor string) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_by": actor,
		}).Error
}

func (r *productRepo) DB() *gorm.DB {
	return r.db
}
