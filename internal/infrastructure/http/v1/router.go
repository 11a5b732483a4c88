package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	appctx "stockyard/internal/core/context"
	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/security"
	"stockyard/internal/domain/auth"
	"stockyard/internal/domain/catalogs/category"
	"stockyard/internal/domain/catalogs/product"
	"stockyard/internal/domain/catalogs/product_type"
	"stockyard/internal/domain/catalogs/warehouse"
	"stockyard/internal/domain/documents/exchange_note"
	"stockyard/internal/domain/documents/stock_check"
	"stockyard/internal/domain/posting"
	"stockyard/internal/domain/registers/stock"
	"stockyard/internal/domain/reports"
	"stockyard/internal/infrastructure/http/v1/handlers"
	"stockyard/internal/infrastructure/http/v1/middleware"
	"stockyard/internal/infrastructure/storage/postgres"
	"stockyard/internal/infrastructure/storage/postgres/catalog_repo"
	"stockyard/internal/infrastructure/storage/postgres/document_repo"
	"stockyard/internal/infrastructure/storage/postgres/register_repo"
	"stockyard/internal/infrastructure/storage/postgres/report_repo"
	"stockyard/pkg/logger"
)

// RouterConfig holds everything the HTTP layer needs.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency)
	Pool *postgres.Pool

	// TxManager provides transactional access for all repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// AuthService issues tokens and checks them on every request
	AuthService *auth.Service

	// Numerator for note number generation
	Numerator numerator.Generator

	// PostingPolicy guards finalization against closed periods
	PostingPolicy security.PostingPolicy

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService)) // 1. Validate JWT, reject revoked tokens
		protected.Use(middleware.UserContext())         // 2. Add UserID to context for domain layer

		if cfg.IdempotencyEnabled {
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, 10*time.Minute)
			protected.Use(middleware.Idempotency(store))
		}

		registerCatalogRoutes(protected, cfg)
		registerNoteRoutes(protected, cfg)
		registerStockRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.AuthService))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()
	txm := cfg.TxManager

	// --- CATEGORIES ---
	{
		repo := catalog_repo.NewCategoryRepo(txm)
		service := category.NewService(repo, txm, cfg.Numerator)
		handler := handlers.NewCategoryHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/categories"), handler, "catalog:category")
	}

	// --- PRODUCT TYPES ---
	{
		categoryRepo := catalog_repo.NewCategoryRepo(txm)
		repo := catalog_repo.NewProductTypeRepo(txm)
		service := product_type.NewService(repo, categoryRepo, txm, cfg.Numerator)
		handler := handlers.NewProductTypeHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/product-types"), handler, "catalog:product_type")
	}

	// --- PRODUCTS ---
	{
		typeRepo := catalog_repo.NewProductTypeRepo(txm)
		repo := catalog_repo.NewProductRepo(txm)
		service := product.NewService(repo, typeRepo, txm, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler, "catalog:product")
	}

	// --- WAREHOUSES ---
	{
		repo := catalog_repo.NewWarehouseRepo(txm)
		service := warehouse.NewService(repo, txm, cfg.Numerator)
		handler := handlers.NewWarehouseHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/warehouses"), handler, "catalog:warehouse")
	}
}

// registerNoteRoutes registers exchange note and stock check endpoints.
func registerNoteRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()
	txm := cfg.TxManager

	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)

	stockRepo := register_repo.NewStockRepo(txm)
	stockService := stock.NewService(stockRepo)
	postingEngine := posting.NewEngine(stockService, txm, cfg.PostingPolicy)

	auditLog, err := postgres.NewAuditService(txm)
	if err != nil {
		cfg.Logger.Warnw("audit log disabled", "error", err)
		auditLog = nil
	}

	// --- EXCHANGE NOTES ---
	{
		repo := document_repo.NewExchangeNoteRepo(txm)
		service := exchange_note.NewService(repo, warehouseRepo, productRepo, stockService, postingEngine, cfg.Numerator, txm)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, note *exchange_note.ExchangeNote) error {
			stampCreated(ctx, &note.CreatedBy, &note.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, note *exchange_note.ExchangeNote) error {
			stampUpdated(ctx, &note.UpdatedBy)
			return nil
		})
		service.Hooks().OnAfterCreate(func(ctx context.Context, note *exchange_note.ExchangeNote) error {
			logAudit(ctx, auditLog, "exchange_note", note.ID, postgres.AuditActionCreate, map[string]any{
				"number": note.Number, "type": note.Type, "status": note.Status,
			})
			return nil
		})
		service.Hooks().OnAfterUpdate(func(ctx context.Context, note *exchange_note.ExchangeNote) error {
			logAudit(ctx, auditLog, "exchange_note", note.ID, postgres.AuditActionUpdate, map[string]any{
				"number": note.Number, "status": note.Status,
			})
			return nil
		})

		handler := handlers.NewExchangeNoteHandler(baseHandler, service)
		group := docsGroup.Group("/exchange-notes")
		RegisterNoteRoutes(group, handler, "document:exchange_note")
		group.PUT("/:id", middleware.RequirePermission("document:exchange_note:update"), handler.Update)
		group.GET("/by-number/:number", middleware.RequirePermission("document:exchange_note:read"), handler.GetByNumber)
		group.POST("/:id/items", middleware.RequirePermission("document:exchange_note:update"), handler.AddItem)
		group.POST("/:id/cancel", middleware.RequirePermission("document:exchange_note:approve"), handler.Cancel)
	}

	// --- STOCK CHECKS ---
	{
		repo := document_repo.NewStockCheckRepo(txm)
		service := stock_check.NewService(repo, warehouseRepo, productRepo, stockService, cfg.Numerator, txm)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, note *stock_check.StockCheckNote) error {
			stampCreated(ctx, &note.CreatedBy, &note.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, note *stock_check.StockCheckNote) error {
			stampUpdated(ctx, &note.UpdatedBy)
			return nil
		})
		service.Hooks().OnAfterCreate(func(ctx context.Context, note *stock_check.StockCheckNote) error {
			logAudit(ctx, auditLog, "stock_check", note.ID, postgres.AuditActionCreate, map[string]any{
				"number": note.Number, "warehouseId": note.WarehouseID, "status": note.Status,
			})
			return nil
		})
		service.Hooks().OnAfterUpdate(func(ctx context.Context, note *stock_check.StockCheckNote) error {
			logAudit(ctx, auditLog, "stock_check", note.ID, postgres.AuditActionUpdate, map[string]any{
				"number": note.Number, "status": note.Status,
			})
			return nil
		})

		handler := handlers.NewStockCheckHandler(baseHandler, service)
		group := docsGroup.Group("/stock-checks")
		RegisterNoteRoutes(group, handler, "document:stock_check")
		group.POST("/:id/products", middleware.RequirePermission("document:stock_check:update"), handler.AddProduct)
		group.PUT("/:id/products/:productId", middleware.RequirePermission("document:stock_check:update"), handler.UpdateActualQuantity)
		group.DELETE("/:id/products/:productId", middleware.RequirePermission("document:stock_check:update"), handler.RemoveProduct)
		group.GET("/:id/comparison", middleware.RequirePermission("document:stock_check:read"), handler.GetComparison)
	}
}

// registerStockRoutes registers accumulation register endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	stockRepo := register_repo.NewStockRepo(cfg.TxManager)
	stockService := stock.NewService(stockRepo)
	stockHandler := handlers.NewStockHandler(baseHandler, stockService, stockRepo)

	stockGroup := registers.Group("/stock")
	stockGroup.Use(middleware.RequirePermission("register:stock:read"))
	stockHandler.RegisterRoutes(stockGroup)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo(cfg.TxManager)
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup.GET("/stock-balance", middleware.RequirePermission("report:stock:read"), reportHandler.GetStockBalance)
	reportsGroup.GET("/stock-turnover", middleware.RequirePermission("report:stock:read"), reportHandler.GetStockTurnover)
	reportsGroup.GET("/note-journal", middleware.RequirePermission("report:notes:read"), reportHandler.GetNoteJournal)
}

// logAudit writes a change record. Audit failures never fail the
// business operation, they are logged and dropped.
func logAudit(ctx context.Context, svc *postgres.AuditService, entityType string, entityID id.ID, action postgres.AuditAction, changes map[string]any) {
	if svc == nil {
		return
	}
	if err := svc.LogChange(ctx, entityType, entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit log write failed", "entity_type", entityType, "error", err)
	}
}

// stampCreated fills audit fields on create from the authenticated user.
func stampCreated(ctx context.Context, createdBy, updatedBy *string) {
	if code := appctx.GetUserCode(ctx); code != "" {
		*createdBy = code
		*updatedBy = code
	}
}

// stampUpdated fills the audit field on update from the authenticated user.
func stampUpdated(ctx context.Context, updatedBy *string) {
	if code := appctx.GetUserCode(ctx); code != "" {
		*updatedBy = code
	}
}
