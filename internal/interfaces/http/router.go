package http

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Supermercado-api/internal/application/activity"
	appanalytics "github.com/jhoicas/Supermercado-api/internal/application/analytics"
	"github.com/jhoicas/Supermercado-api/internal/application/auth"
	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
	"github.com/jhoicas/Supermercado-api/internal/application/inventory"
	"github.com/jhoicas/Supermercado-api/internal/application/usecase"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	CatalogUC   *usecase.CatalogUseCase
	CreateOrder *checkout.CreateOrderUseCase
	Refund      *checkout.RefundUseCase
	Orders      *checkout.OrderQueryUseCase
	AdjustStock *inventory.AdjustStockUseCase
	LowStock    *inventory.LowStockUseCase
	ActivityUC  *activity.UseCase
	DashboardUC *appanalytics.DashboardUseCase

	// LiveFeed atiende /ws/activities. nil = sin feed en vivo.
	LiveFeed func(*websocket.Conn)
	// RateLimiter se aplica a POST /orders y /orders/:id/refund. nil = sin límite.
	RateLimiter *RateLimiter
	// HealthCheck verifica dependencias (BD, Redis). nil = siempre ok.
	HealthCheck func(ctx context.Context) error

	AppName   string
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.AppName, deps.HealthCheck))

	if deps.LiveFeed != nil {
		app.Get("/ws/activities",
			WebSocketAuth(deps.JWTSecret, websocket.IsWebSocketUpgrade),
			websocket.New(deps.LiveFeed),
		)
	}

	api := app.Group("/api")
	admin := RequireRole(entity.RoleAdmin)
	staff := RequireRole(entity.RoleAdmin, entity.RoleManager)
	limited := func(c *fiber.Ctx) error { return c.Next() }
	if deps.RateLimiter != nil {
		limited = deps.RateLimiter.Middleware()
	}

	// Auth: login es público
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", admin, authHandler.Register)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", admin, userHandler.List)
	users.Get("/:id", userHandler.GetByID)

	// Catálogo
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", staff, productHandler.Create)
	products.Put("/:id", staff, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	categories := protected.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", staff, catalogHandler.CreateCategory)
	categories.Put("/:id", staff, catalogHandler.UpdateCategory)
	categories.Delete("/:id", staff, catalogHandler.DeleteCategory)

	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", catalogHandler.ListSuppliers)
	suppliers.Get("/:id", catalogHandler.GetSupplier)
	suppliers.Post("/", staff, catalogHandler.CreateSupplier)
	suppliers.Put("/:id", staff, catalogHandler.UpdateSupplier)
	suppliers.Delete("/:id", staff, catalogHandler.DeleteSupplier)

	// Caja
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.CreateOrder, deps.Refund, deps.Orders)
	orders.Post("/", limited, orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/receipt", orderHandler.Receipt)
	orders.Post("/:id/refund", limited, orderHandler.Refund)

	// Inventario
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustStock, deps.LowStock)
	invGroup.Post("/adjustments", staff, inventoryHandler.Adjust)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)

	// Actividad
	activities := protected.Group("/activities")
	activityHandler := NewActivityHandler(deps.ActivityUC)
	activities.Get("/", activityHandler.List)
	activities.Get("/stats", activityHandler.Stats)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", staff, dashboardHandler.GetSummary)
}

func healthHandler(appName string, check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			if err := check(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "degraded", "service": appName, "error": err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": appName})
	}
}
