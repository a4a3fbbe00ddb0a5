package router

import (
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/config"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/handler"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/service"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service layer, shared with the background scheduler.
type Services struct {
	Ledger         service.StockLedger
	Pricing        service.PricingResolver
	Promotions     service.PromotionResolver
	PurchaseOrders service.PurchaseOrderService
	Orders         service.OrderService
}

// NewServices wires repositories and collaborators into the services.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gateway service.PaymentGateway) *Services {
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	stockTxRepo := repository.NewStockTransactionRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)

	ledger := service.NewStockLedger(inventoryRepo, stockTxRepo, productRepo)
	pricing := service.NewPricingResolver(priceRepo)
	promotions := service.NewPromotionResolver(promotionRepo, rdb, cfg.PromotionCacheTTL)

	// Nil interface, not a nil *infra.Mailer, so SendEmail reports mail as unconfigured.
	var mailer service.Mailer
	if cfg.SMTPHost != "" {
		mailer = infra.NewMailer(cfg)
	}

	return &Services{
		Ledger:     ledger,
		Pricing:    pricing,
		Promotions: promotions,
		PurchaseOrders: service.NewPurchaseOrderService(service.PurchaseOrderDeps{
			Repo:      repository.NewPurchaseOrderRepository(db),
			Suppliers: repository.NewSupplierRepository(db),
			Products:  productRepo,
			Inventory: inventoryRepo,
			Accounts:  repository.NewAccountRepository(db),
			Ledger:    ledger,
			Pricing:   pricing,
			Notifier:  worker.NewDispatcher(rdb),
			Mailer:    mailer,
		}),
		Orders: service.NewOrderService(service.OrderDeps{
			Orders:     repository.NewOrderRepository(db),
			Customers:  repository.NewCustomerRepository(db),
			Products:   productRepo,
			Ledger:     ledger,
			Pricing:    pricing,
			Promotions: promotions,
			Gateway:    gateway,
			PointUnit:  cfg.LoyaltyPointUnit,
		}),
	}
}

// New returns a configured Gin engine serving svcs. momo verifies payment
// callbacks and paymentCB is reported by /health.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services, momo *infra.MomoClient, paymentCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	Register(r, cfg.JWTSecret, Handlers{
		PurchaseOrders: handler.NewPurchaseOrdersHandler(svcs.PurchaseOrders),
		Orders:         handler.NewOrdersHandler(svcs.Orders),
		Payments:       handler.NewPaymentsHandler(svcs.Orders, momo),
		Inventory:      handler.NewInventoryHandler(svcs.Ledger),
		Pricing:        handler.NewPricingHandler(svcs.Pricing, svcs.Promotions),
		Notifications:  handler.NewNotificationsHandler(repository.NewNotificationRepository(db)),
	})
	r.GET("/health", handler.Health(db, rdb, paymentCB))

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	PurchaseOrders *handler.PurchaseOrdersHandler
	Orders         *handler.OrdersHandler
	Payments       *handler.PaymentsHandler
	Inventory      *handler.InventoryHandler
	Pricing        *handler.PricingHandler
	Notifications  *handler.NotificationsHandler
}

// Register mounts the /v1 routes. Permissions are declared per endpoint.
func Register(r gin.IRouter, jwtSecret string, h Handlers) {
	// Gateway callbacks authenticate by signature, not by token
	r.POST("/v1/payments/callback", h.Payments.Callback)

	v1 := r.Group("/v1", middleware.JWTAuth(jwtSecret))

	manage := middleware.RequirePermission(model.PermPurchaseOrderManage)
	approve := middleware.RequirePermission(model.PermPurchaseOrderApprove)
	po := v1.Group("/purchase-orders")
	{
		po.POST("", manage, h.PurchaseOrders.Create)
		po.GET("/:id", middleware.RequirePermission(model.PermPurchaseOrderManage, model.PermPurchaseOrderApprove), h.PurchaseOrders.Get)
		po.POST("/:id/approve", approve, h.PurchaseOrders.Approve)
		po.PUT("/:id/received", manage, h.PurchaseOrders.UpdateReceived)
		po.POST("/:id/receive", manage, h.PurchaseOrders.Receive)
		po.POST("/:id/cancel", approve, h.PurchaseOrders.Cancel)
		po.POST("/:id/revert", manage, h.PurchaseOrders.Revert)
		po.POST("/send-email", manage, h.PurchaseOrders.SendEmail)
	}

	sell := middleware.RequirePermission(model.PermOrderSell)
	orders := v1.Group("/orders")
	{
		orders.POST("", sell, h.Orders.Create)
		orders.GET("/:id", sell, h.Orders.Get)
		orders.POST("/:id/finalize", sell, h.Orders.Finalize)
		orders.POST("/:id/hold", sell, h.Orders.Hold)
		orders.POST("/:id/complete", sell, h.Orders.Complete)
		orders.POST("/:id/cancel", middleware.RequirePermission(model.PermOrderCancel), h.Orders.Cancel)
	}

	inv := v1.Group("/inventory", middleware.RequirePermission(model.PermInventoryManage))
	{
		inv.GET("/stock/:product_id", h.Inventory.GetStock)
		inv.GET("/transactions", h.Inventory.ListTransactions)
		inv.POST("/adjustments", h.Inventory.Adjust)
		inv.GET("/reconcile/:product_id", h.Inventory.Reconcile)
		inv.GET("/low-stock", h.Inventory.LowStock)
	}

	// Price lookups are open to every authenticated account
	v1.GET("/prices/:product_id/effective", h.Pricing.Effective)
	v1.GET("/prices/:product_id/history", h.Pricing.History)
	v1.GET("/promotions/best-discount", h.Pricing.BestDiscount)

	v1.GET("/notifications", h.Notifications.List)
}
