package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-backend/internal/handler"
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.Product{}, &model.ProductTag{}, &model.ProductTagRelation{}, &model.ProductImage{},
		&model.Order{}, &model.OrderItem{},
		&model.StoreCounter{}, &model.TagProductCount{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub for the order-progress board
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	tagRepo := repository.NewTagRepo(db)
	imageRepo := repository.NewImageRepo(db)
	counterRepo := repository.NewCounterRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	productService := service.NewProductService(productRepo, tagRepo, imageRepo, counterRepo, db, wsHub)
	orderService := service.NewOrderService(orderRepo, productRepo, db, wsHub)
	exportService := service.NewExportService(orderRepo, productRepo)
	dashService := service.NewDashboardService(orderRepo, counterRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	imageHandler := handler.NewImageHandler(productService)
	analyticsHandler := handler.NewAnalyticsHandler(exportService)
	dashHandler := handler.NewDashboardHandler(dashService)
	calcHandler := handler.NewCalcHandler()
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Shop POS Backend v1.0",
		// Base64 image payloads run up to 7.5MB before decoding
		BodyLimit: 16 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Auth Routes (No authentication required)
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// Product images are consumed by plain <img> tags, so no auth header
	app.Get("/images/products/:id", imageHandler.GetProductImage)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard Routes (authenticated users can view)
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/sales-movement", dashHandler.GetSalesMovement)

	// Product Routes (with privilege checks)
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeleteProduct)

	// Tag Routes
	protected.Get("/tags", productHandler.GetTags)
	protected.Post("/tags", middleware.RequirePrivilege("tag:create"), productHandler.CreateTag)

	// Order Routes (with privilege checks)
	protected.Get("/orders", middleware.RequirePrivilege("order:view"), orderHandler.GetOrders)
	protected.Get("/orders/:id", middleware.RequirePrivilege("order:view"), orderHandler.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege("order:create"), orderHandler.RegisterOrder)
	protected.Put("/orders/:id", middleware.RequirePrivilege("order:update"), orderHandler.UpdateOrder)
	protected.Delete("/orders/:id", middleware.RequirePrivilege("order:delete"), orderHandler.DeleteOrder)

	// Register calculator
	protected.Get("/calc", calcHandler.Evaluate)

	// Analytics CSV exports
	staff := app.Group("/staff", middleware.RequireAuth(userRepo))
	staff.Get("/analytics/orders/csv", middleware.RequirePrivilege("analytics:export"), analyticsHandler.ExportOrdersCSV)
	staff.Get("/analytics/products/csv", middleware.RequirePrivilege("analytics:export"), analyticsHandler.ExportProductsCSV)

	// User Management Routes (with privilege checks)
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

	// WebSocket Route (order-progress board live updates)
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

	// Wait for interrupt signal to gracefully shutdown
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

	// MANAGER gets ALL privileges
	managerRole, err := roleRepo.FindByCode(model.RoleManager)
	if err == nil && len(managerRole.Privileges) == 0 {
		db.Model(&managerRole).Association("Privileges").Replace(allPrivileges)
		log.Println("MANAGER role assigned all privileges")
	}

	// STAFF gets register-level privileges (no user management, no deletes)
	staffRole, err := roleRepo.FindByCode(model.RoleStaff)
	if err == nil && len(staffRole.Privileges) == 0 {
		excluded := map[string]bool{
			"user:create": true, "user:update": true, "user:delete": true,
			"user:update_privilege": true,
			"product:delete":        true, "order:delete": true,
		}
		staffPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if !excluded[p.Code] {
				staffPrivileges = append(staffPrivileges, p)
			}
		}
		db.Model(&staffRole).Association("Privileges").Replace(staffPrivileges)
		log.Println("STAFF role assigned register privileges")
	}

	// 4. Create default admin user with MANAGER role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		managerRole, _ := roleRepo.FindByCode(model.RoleManager)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Store Manager",
			PhoneNumber: "",
			RoleID:      &managerRole.ID,
			IsActive:    true,
			Privileges:  managerRole.Privileges,
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
			log.Println("Admin user created: admin@example.com / admin123 (MANAGER)")
		}
	}
}
