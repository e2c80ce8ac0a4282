package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexisDiaz000/las-perras/internal/handler"
	"github.com/AlexisDiaz000/las-perras/internal/middleware"
	"github.com/AlexisDiaz000/las-perras/internal/model"
	"github.com/AlexisDiaz000/las-perras/internal/repository"
	"github.com/AlexisDiaz000/las-perras/internal/service"
	"github.com/AlexisDiaz000/las-perras/internal/ws"
	"github.com/AlexisDiaz000/las-perras/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.InventoryItem{}, &model.InventoryMovement{},
		&model.Product{}, &model.ProductIngredient{},
		&model.Sale{}, &model.SaleItem{},
		&model.Expense{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	itemRepo := repository.NewItemRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	ledgerService := service.NewLedgerService(itemRepo, movementRepo)
	engine := service.NewConsumptionEngine(productRepo, itemRepo, movementRepo, ledgerService, decimal.Zero)
	catalogService := service.NewCatalogService(productRepo, itemRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, ledgerService, engine, wsHub)
	expenseService := service.NewExpenseService(expenseRepo)
	metricsService := service.NewMetricsService(saleRepo, movementRepo, expenseRepo, itemRepo, service.DefaultPartners())
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(ledgerService)
	productHandler := handler.NewProductHandler(catalogService)
	saleHandler := handler.NewSaleHandler(saleService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	dashHandler := handler.NewDashboardHandler(metricsService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Las Perras POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard Routes
	protected.Get("/dashboard/metrics", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetMetrics)
	protected.Get("/dashboard/sales-by-product", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesByProduct)
	protected.Get("/dashboard/expenses-by-category", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetExpensesByCategory)
	protected.Get("/dashboard/low-stock", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetLowStock)

	// Product / Menu Routes
	protected.Get("/products", middleware.RequirePrivilege("product:view"), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), productHandler.GetProduct)
	protected.Get("/products/:id/recipe", middleware.RequirePrivilege("product:view"), productHandler.GetRecipe)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeactivateProduct)

	// Inventory Routes
	protected.Get("/inventory/items", middleware.RequirePrivilege("inventory:view"), invHandler.GetItems)
	protected.Get("/inventory/items/low-stock", middleware.RequirePrivilege("inventory:view"), invHandler.GetLowStockItems)
	protected.Post("/inventory/items", middleware.RequirePrivilege("inventory:create"), invHandler.CreateItem)
	protected.Put("/inventory/items/:id", middleware.RequirePrivilege("inventory:update"), invHandler.UpdateItem)
	protected.Get("/inventory/movements", middleware.RequirePrivilege("inventory:view"), invHandler.GetMovements)
	protected.Post("/inventory/movements", middleware.RequirePrivilege("inventory:move"), invHandler.CreateMovement)
	protected.Post("/inventory/stocktake", middleware.RequirePrivilege("inventory:stocktake"), invHandler.Stocktake)

	// Sale / POS Routes
	protected.Get("/sales", middleware.RequirePrivilege("sale:view"), saleHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege("sale:view"), saleHandler.GetSale)
	protected.Post("/sales", middleware.RequirePrivilege("sale:create"), saleHandler.CreateSale)
	protected.Post("/sales/:id/send", middleware.RequirePrivilege("sale:update"), saleHandler.SendToKitchen)
	protected.Post("/sales/:id/ready", middleware.RequirePrivilege("sale:update"), saleHandler.MarkReady)
	protected.Post("/sales/:id/deliver", middleware.RequirePrivilege("sale:update"), saleHandler.MarkDelivered)
	protected.Post("/sales/:id/pay", middleware.RequirePrivilege("sale:update"), saleHandler.Pay)
	protected.Post("/sales/:id/void", middleware.RequirePrivilege("sale:void"), saleHandler.Void)
	protected.Post("/sales/:id/refund", middleware.RequirePrivilege("sale:refund"), saleHandler.Refund)

	// Expense Routes
	protected.Get("/expenses", middleware.RequirePrivilege("expense:view"), expenseHandler.GetExpenses)
	protected.Post("/expenses", middleware.RequirePrivilege("expense:create"), expenseHandler.CreateExpense)
	protected.Put("/expenses/:id", middleware.RequirePrivilege("expense:update"), expenseHandler.UpdateExpense)
	protected.Delete("/expenses/:id", middleware.RequirePrivilege("expense:delete"), expenseHandler.DeleteExpense)

	// User Management Routes
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route (order status pushes to the POS and kitchen screens)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// ADMIN gets ALL privileges
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		db.Model(&adminRole).Association("Privileges").Replace(allPrivileges)
		log.Println("ADMIN role assigned all privileges")
	}

	// VENDOR gets the POS subset
	vendorRole, err := roleRepo.FindByCode(model.RoleVendor)
	if err == nil && len(vendorRole.Privileges) == 0 {
		vendorSet := make(map[string]bool, len(model.VendorPrivilegeCodes))
		for _, code := range model.VendorPrivilegeCodes {
			vendorSet[code] = true
		}
		vendorPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if vendorSet[p.Code] {
				vendorPrivileges = append(vendorPrivileges, p)
			}
		}
		db.Model(&vendorRole).Association("Privileges").Replace(vendorPrivileges)
		log.Println("VENDOR role assigned POS privileges")
	}

	// 4. Create default admin user with ADMIN role
	_, err = userRepo.FindByEmail("admin@lasperras.local")
	if err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			Email:       "admin@lasperras.local",
			FullName:    "Administrador",
			PhoneNumber: "",
			RoleID:      &adminRole.ID,
			IsActive:    true,
			Privileges:  adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin@lasperras.local / admin123 (change it)")
		}
	}
}
