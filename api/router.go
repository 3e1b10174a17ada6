package api

import (
	"context"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockflow/internal/cashflow"
	"stockflow/internal/dashboard"
	"stockflow/internal/items"
	"stockflow/internal/sales"
)

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter counts the documents of one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Services are the components served over HTTP.
type Services struct {
	Items     *items.Service
	Sales     *sales.Service
	CashFlows *cashflow.Service
	Dashboard *dashboard.Service
	// Store is nil when running on in-memory storage.
	Store       Pinger
	Collections map[string]Counter
}

// NewEngine returns a gin engine with recovery, request ids, access
// logging and CORS for the given origins ("*" allows any origin).
func NewEngine(logger *zap.Logger, allowOrigins []string) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), RequestID(), AccessLog(logger), cors.New(corsConfig(allowOrigins)))
	return e
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	cfg.ExposeHeaders = []string{RequestIDHeader}

	if len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowOrigins
	cfg.AllowCredentials = true
	return cfg
}

// InitRoutes registers every endpoint on the given Gin engine.
func InitRoutes(e *gin.Engine, svc Services, logger *zap.Logger) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	h := newHandler(svc, logger)

	e.GET("/", h.handleRoot)
	e.GET("/health", h.handleHealth)

	api := e.Group("/api")
	api.GET("/items", h.handleListItems)
	api.POST("/items", h.handleCreateItem)
	api.GET("/lowstock", h.handleListLowStock)
	api.GET("/sales", h.handleListSales)
	api.POST("/sales", h.handleCreateSale)
	api.GET("/cashflows", h.handleListCashFlows)
	api.POST("/cashflows", h.handleCreateCashFlow)
	api.GET("/dashboard", h.handleDashboard)
}
