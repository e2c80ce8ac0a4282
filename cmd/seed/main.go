// Command seed loads the stand's starting inventory and menu into the
// database. It is idempotent: items and products that already exist are left
// untouched. Ingredient names are matched against inventory item names here,
// at import time; once loaded, recipes reference items strictly by id.
package main

import (
	"log"
	"strings"

	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"
	"github.com/AlexisDiaz000/las-perras/internal/service"
	"github.com/AlexisDiaz000/las-perras/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type itemSeed struct {
	Name         string
	Category     string
	Unit         string
	InitialStock float64
	MinThreshold float64
	UnitCost     float64
}

type ingredientSeed struct {
	Item     string
	Quantity float64
}

type productSeed struct {
	Name                  string
	Description           string
	Price                 int64
	Category              string
	RequiresProteinChoice bool
	Ingredients           []ingredientSeed
}

var itemSeeds = []itemSeed{
	{"Pan Perro", "Panadería", "unidades", 50, 20, 700},
	{"Salchicha", "Proteínas", "unidades", 100, 30, 900},
	{"Tocineta", "Proteínas", "gramos", 1000, 300, 28},
	{"Huevo Codorniz", "Proteínas", "unidades", 60, 20, 350},
	{"Carne Desmechada", "Carnes", "gramos", 2000, 500, 32},
	{"Pollo Desmechado", "Carnes", "gramos", 2000, 500, 26},
	{"Cerdo Desmechado", "Carnes", "gramos", 2000, 500, 30},
	{"Queso", "Complementos", "gramos", 2000, 500, 20},
	{"Papa Fosforito", "Complementos", "gramos", 1500, 400, 12},
	{"Cebolla", "Complementos", "gramos", 1000, 300, 6},
	{"Maíz Tierno", "Complementos", "gramos", 800, 200, 10},
	{"Salsa", "Aderezos", "gramos", 1500, 400, 8},
	{"Coca-Cola 400ml", "Bebidas", "unidades", 24, 6, 2500},
	{"Coca-Cola 1L", "Bebidas", "unidades", 12, 4, 3500},
	{"Coca-Cola 1.5L", "Bebidas", "unidades", 12, 4, 4500},
}

var productSeeds = []productSeed{
	// Perras sencillas
	{
		Name:        "Perrita",
		Description: "1 salchicha + cebolla, papas ripio, queso y salsas de la casa.",
		Price:       6000,
		Category:    "Perros Sencillos",
		Ingredients: []ingredientSeed{
			{"Salchicha", 1}, {"Pan Perro", 1}, {"Queso", 25},
			{"Papa Fosforito", 20}, {"Cebolla", 15}, {"Salsa", 5},
		},
	},
	{
		Name:        "Perrota",
		Description: "2 salchichas + cebolla, papas ripio, queso y salsas de la casa.",
		Price:       7000,
		Category:    "Perros Sencillos",
		Ingredients: []ingredientSeed{
			{"Salchicha", 2}, {"Pan Perro", 1}, {"Queso", 35},
			{"Papa Fosforito", 25}, {"Cebolla", 20}, {"Salsa", 10},
		},
	},
	{
		Name:        "Perrísima",
		Description: "3 salchichas + cebolla, papas ripio, queso y salsas de la casa.",
		Price:       8000,
		Category:    "Perros Sencillos",
		Ingredients: []ingredientSeed{
			{"Salchicha", 3}, {"Pan Perro", 1}, {"Queso", 45},
			{"Papa Fosforito", 30}, {"Cebolla", 25}, {"Salsa", 15},
		},
	},

	// Perras especiales
	{
		Name:                  "La Gran Perra",
		Description:           "3 salchichas + carne, pollo o cerdo + cebolla, papas ripio, queso y salsas de la casa.",
		Price:                 12000,
		Category:              "Perros Especiales",
		RequiresProteinChoice: true,
		// The chosen protein is added per sale by the POS, not in the base recipe.
		Ingredients: []ingredientSeed{
			{"Salchicha", 3}, {"Pan Perro", 1}, {"Queso", 50},
			{"Papa Fosforito", 30}, {"Cebolla", 25}, {"Salsa", 20},
		},
	},
	{
		Name:        "La Perra Trifásica",
		Description: "3 salchichas + carne, pollo y cerdo + cebolla, papas ripio, queso y salsas de la casa.",
		Price:       14000,
		Category:    "Perros Especiales",
		Ingredients: []ingredientSeed{
			{"Salchicha", 3}, {"Pan Perro", 1},
			{"Carne Desmechada", 30}, {"Pollo Desmechado", 30}, {"Cerdo Desmechado", 30},
			{"Queso", 50}, {"Papa Fosforito", 30}, {"Cebolla", 25}, {"Salsa", 25},
		},
	},
	{
		Name:        "La Super Perra",
		Description: "3 salchichas + carne, pollo, tocineta y huevos de codorniz + cebolla, papas ripio, queso y salsas de la casa.",
		Price:       15000,
		Category:    "Perros Especiales",
		Ingredients: []ingredientSeed{
			{"Salchicha", 3}, {"Pan Perro", 1},
			{"Carne Desmechada", 30}, {"Pollo Desmechado", 30},
			{"Tocineta", 20}, {"Huevo Codorniz", 2},
			{"Queso", 50}, {"Papa Fosforito", 30}, {"Cebolla", 25}, {"Salsa", 25},
		},
	},
	{
		Name:        "La Perra Quesuda",
		Description: "3 salchichas + doble porción de pollo, queso gratinado, maíz tierno y huevos de codorniz + cebolla, papas ripio, queso y salsas de la casa.",
		Price:       17000,
		Category:    "Perros Especiales",
		Ingredients: []ingredientSeed{
			{"Salchicha", 3}, {"Pan Perro", 1},
			{"Pollo Desmechado", 80}, {"Maíz Tierno", 30}, {"Huevo Codorniz", 2},
			{"Queso", 80}, {"Papa Fosforito", 30}, {"Cebolla", 25}, {"Salsa", 25},
		},
	},

	// Bebidas
	{
		Name:        "Coca-Cola Personal 400ml",
		Price:       4000,
		Category:    "Bebidas",
		Ingredients: []ingredientSeed{{"Coca-Cola 400ml", 1}},
	},
	{
		Name:        "Coca-Cola 1 Litro",
		Price:       5000,
		Category:    "Bebidas",
		Ingredients: []ingredientSeed{{"Coca-Cola 1L", 1}},
	},
	{
		Name:        "Coca-Cola 1.5 Litros",
		Price:       7000,
		Category:    "Bebidas",
		Ingredients: []ingredientSeed{{"Coca-Cola 1.5L", 1}},
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	db := database.ConnectDB()
	db.AutoMigrate(
		&model.InventoryItem{}, &model.InventoryMovement{},
		&model.Product{}, &model.ProductIngredient{},
	)

	itemRepo := repository.NewItemRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	productRepo := repository.NewProductRepo(db)

	ledger := service.NewLedgerService(itemRepo, movementRepo)
	catalog := service.NewCatalogService(productRepo, itemRepo)

	seedItems(ledger)
	seedProducts(itemRepo, catalog)

	log.Println("Seed complete")
}

func seedItems(ledger service.LedgerService) {
	for _, seed := range itemSeeds {
		item := &model.InventoryItem{
			Name:         seed.Name,
			Category:     seed.Category,
			Unit:         seed.Unit,
			CurrentStock: decimal.NewFromFloat(seed.InitialStock),
			MinThreshold: decimal.NewFromFloat(seed.MinThreshold),
			UnitCost:     decimal.NewFromFloat(seed.UnitCost),
		}
		if err := ledger.CreateItem(item, "seed"); err != nil {
			log.Printf("Item %q: %v", seed.Name, err)
			continue
		}
		log.Printf("Item created: %s", seed.Name)
	}
}

func seedProducts(itemRepo repository.ItemRepository, catalog service.CatalogService) {
	items, err := itemRepo.FindAll()
	if err != nil {
		log.Fatalf("Failed to load inventory items: %v", err)
	}

	index := make(map[string]uuid.UUID, len(items))
	for _, item := range items {
		index[strings.ToLower(item.Name)] = item.ID
	}

	// Exact match first, then substring either way.
	findItemID := func(name string) (uuid.UUID, bool) {
		key := strings.ToLower(name)
		if id, ok := index[key]; ok {
			return id, true
		}
		for invName, id := range index {
			if strings.Contains(invName, key) || strings.Contains(key, invName) {
				return id, true
			}
		}
		return uuid.Nil, false
	}

	for _, seed := range productSeeds {
		product := &model.Product{
			Name:                  seed.Name,
			Description:           seed.Description,
			Price:                 decimal.NewFromInt(seed.Price),
			Category:              seed.Category,
			RequiresProteinChoice: seed.RequiresProteinChoice,
		}

		var ingredients []model.ProductIngredient
		for _, ing := range seed.Ingredients {
			itemID, ok := findItemID(ing.Item)
			if !ok {
				log.Printf("Product %q: no inventory item matches %q, skipping ingredient", seed.Name, ing.Item)
				continue
			}
			ingredients = append(ingredients, model.ProductIngredient{
				ItemID:   itemID,
				Quantity: decimal.NewFromFloat(ing.Quantity),
			})
		}

		if err := catalog.CreateProduct(product, ingredients, "seed"); err != nil {
			log.Printf("Product %q: %v", seed.Name, err)
			continue
		}
		log.Printf("Product created: %s (%d ingredients)", seed.Name, len(ingredients))
	}
}
