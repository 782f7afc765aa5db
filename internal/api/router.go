package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/invoicehub/invoicing-system/docs"
	"github.com/invoicehub/invoicing-system/internal/api/handler"
	"github.com/invoicehub/invoicing-system/internal/api/middleware"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
	"github.com/invoicehub/invoicing-system/internal/core/service"
	"github.com/invoicehub/invoicing-system/internal/infrastructure/config"
	mongorepo "github.com/invoicehub/invoicing-system/internal/infrastructure/db/mongo"
	redisdb "github.com/invoicehub/invoicing-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, store ports.AttachmentStore, renderer ports.PDFRenderer, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("invoicing"))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	invoiceRepo := mongorepo.NewInvoiceRepository(db)
	revocations := redisdb.NewRevocationStore(rdb)

	authService := service.NewAuthService(userRepo, revocations, cfg.JWTSecret, cfg.TokenTTL, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, store, log)
	exportService := service.NewExportService(invoiceRepo, renderer, cfg.Export.Dir, log)

	authHandler := handler.NewAuthHandler(authService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, exportService)
	authRequired := middleware.Auth(cfg.JWTSecret, revocations)

	// --- Auth routes ---
	// Logout and me resolve the session themselves so an absent or stale
	// token is handled as a no-op instead of a 401.
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me)

	// --- Invoice routes ---
	v1 := e.Group("/v1", authRequired)
	v1.POST("/invoices", invoiceHandler.Create)
	v1.GET("/invoices", invoiceHandler.List)
	v1.DELETE("/invoices/:id", invoiceHandler.Delete)
	v1.GET("/invoices/:id/pdf", invoiceHandler.ExportPDF)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
