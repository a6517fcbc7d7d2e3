package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/config"
	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/presentation/http/handler"
	"github.com/sangkips/tableside-api/internal/presentation/http/middleware"
	"github.com/sangkips/tableside-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order    *handler.OrderHandler
	Table    *handler.TableHandler
	Bill     *handler.BillHandler
	Customer *handler.CustomerHandler
	Payment  *handler.PaymentHandler
	Printer  *handler.PrinterHandler
	Report   *handler.ReportHandler
	Settings *handler.SettingsHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	OutletRepo      domainRepo.OutletRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is created from Cfg.RateLimit when nil
	RateLimiter *middleware.OutletRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"storage": deps.Cfg.Storage.Driver,
		})
	})

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewOutletRateLimiter(middleware.RateLimiterConfigFor(
			deps.Cfg.RateLimit.Requests,
			deps.Cfg.RateLimit.Window(),
		))
	}
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		TTL:    deps.Cfg.Billing.IdempotencyTTL,
		Logger: deps.Logger,
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Payment provider callbacks carry no outlet; the order decides it
		v1.POST("/public/payments/webhook", h.Payment.Webhook)

		// Public routes (no authentication required)
		public := v1.Group("/public")
		public.Use(middleware.OutletMiddleware(deps.OutletRepo))
		public.Use(middleware.RequireOutlet())
		public.Use(rateLimiter.Middleware())
		registerPublicRoutes(public, h, idempotency)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.OutletMiddleware(deps.OutletRepo))
		protected.Use(middleware.RequireOutlet())
		protected.Use(rateLimiter.Middleware())
		registerProtectedRoutes(protected, h, idempotency)
	}

	return router
}

func registerPublicRoutes(public *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	public.POST("/outlets/:slug/orders", idempotency, h.Order.CreatePublic)
	public.GET("/orders/:id/payment", h.Payment.Reconcile)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	registerOrderRoutes(protected, h, idempotency)
	registerTableRoutes(protected, h)
	registerBillRoutes(protected, h, idempotency)
	registerCustomerRoutes(protected, h)
	registerPrinterRoutes(protected, h)
	registerReportRoutes(protected, h)
	registerSettingsRoutes(protected, h)
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	orders := protected.Group("/orders")
	{
		orders.GET("", middleware.RequirePermission(middleware.PermTakeOrders, middleware.PermUpdateKitchen, middleware.PermManageBills), h.Order.List)
		orders.GET("/:id", middleware.RequirePermission(middleware.PermTakeOrders, middleware.PermUpdateKitchen, middleware.PermManageBills), h.Order.Get)
		orders.POST("", middleware.RequirePermission(middleware.PermTakeOrders), idempotency, h.Order.Create)
		orders.PATCH("/:id/status", middleware.RequirePermission(middleware.PermTakeOrders, middleware.PermUpdateKitchen), h.Order.Transition)
	}
}

func registerTableRoutes(protected *gin.RouterGroup, h *Handlers) {
	tables := protected.Group("/tables")
	tables.Use(middleware.RequirePermission(middleware.PermTakeOrders, middleware.PermManageBills))
	{
		tables.GET("", h.Table.List)
		tables.GET("/:id/orders", h.Table.ActiveOrders)
		tables.GET("/:id/orders/summary", h.Table.Summary)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	bills := protected.Group("/bills")
	bills.Use(middleware.RequirePermission(middleware.PermManageBills))
	{
		bills.GET("", h.Bill.List)
		bills.POST("", idempotency, h.Bill.Create)
		bills.POST("/preview", h.Bill.Preview)
		bills.GET("/:id", h.Bill.Get)
		bills.GET("/:id/receipt", h.Printer.Receipt)
		bills.POST("/:id/print", h.Printer.PrintBill)
		bills.GET("/:id/pdf", h.Report.BillPDF)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(middleware.PermManageCustomers, middleware.PermManageBills))
	{
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.GET("/:id/due-payments", h.Customer.ListDuePayments)
		customers.POST("/:id/due-payments", middleware.RequirePermission(middleware.PermManageCustomers), h.Customer.RecordDuePayment)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	printer.Use(middleware.RequirePermission(middleware.PermManageBills))
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission(middleware.PermViewReports))
	{
		reports.GET("/bills.xlsx", h.Report.SalesExport)
	}
}

func registerSettingsRoutes(protected *gin.RouterGroup, h *Handlers) {
	settings := protected.Group("/settings")
	{
		settings.GET("", middleware.RequirePermission(middleware.PermManageBills, middleware.PermManageOutlet), h.Settings.GetSettings)
		settings.PUT("", middleware.RequirePermission(middleware.PermManageOutlet), h.Settings.UpdateSettings)
	}
}
