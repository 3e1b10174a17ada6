package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockflow/internal/items"
	"stockflow/internal/sales"
)

// handler holds the ledger services and implements the HTTP handlers.
type handler struct {
	svc    Services
	logger *zap.Logger
}

func newHandler(svc Services, logger *zap.Logger) *handler {
	return &handler{svc: svc, logger: logger}
}

type createItemRequest struct {
	Name              string `json:"name" binding:"required"`
	Brand             string `json:"brand" binding:"required"`
	Type              string `json:"type" binding:"required"`
	Quantity          *int   `json:"quantity" binding:"required,gte=0"`
	LowStockThreshold *int   `json:"lowStockThreshold" binding:"required,gte=0"`
}

type createSaleRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type createCashFlowRequest struct {
	Description *string  `json:"description" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required"`
	IsInflow    *bool    `json:"isInflow" binding:"required"`
}

func (h *handler) handleRoot(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Welcome to the StockFlow API"})
}

func (h *handler) handleListItems(ctx *gin.Context) {
	all, err := h.svc.Items.ListItems(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, "failed to list items")
		return
	}
	ctx.JSON(http.StatusOK, all)
}

// handleCreateItem handles POST /api/items. Stocking an existing
// (name, brand, type) adds to its quantity.
func (h *handler) handleCreateItem(ctx *gin.Context) {
	var req createItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.badRequest(ctx, err)
		return
	}

	item, err := h.svc.Items.UpsertItem(ctx.Request.Context(), items.NewItem{
		Name:              req.Name,
		Brand:             req.Brand,
		Type:              req.Type,
		Quantity:          *req.Quantity,
		LowStockThreshold: *req.LowStockThreshold,
	})
	if err != nil {
		if errors.Is(err, items.ErrInvalidItem) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.internalError(ctx, "failed to save item")
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

func (h *handler) handleListLowStock(ctx *gin.Context) {
	low, err := h.svc.Items.ListLowStock(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, "failed to list low stock items")
		return
	}
	ctx.JSON(http.StatusOK, low)
}

func (h *handler) handleListSales(ctx *gin.Context) {
	all, err := h.svc.Sales.ListSales(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, "failed to list sales")
		return
	}
	ctx.JSON(http.StatusOK, all)
}

// handleCreateSale handles the POST /api/sales endpoint.
func (h *handler) handleCreateSale(ctx *gin.Context) {
	var req createSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.badRequest(ctx, err)
		return
	}

	sale, err := h.svc.Sales.RecordSale(ctx.Request.Context(), req.ItemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrItemNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		case errors.Is(err, sales.ErrInsufficientStock):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
		case errors.Is(err, sales.ErrInvalidItemID):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		case errors.Is(err, sales.ErrInvalidQuantity):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.internalError(ctx, "failed to record sale")
		}
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

func (h *handler) handleListCashFlows(ctx *gin.Context) {
	all, err := h.svc.CashFlows.ListCashFlows(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, "failed to list cash flows")
		return
	}
	ctx.JSON(http.StatusOK, all)
}

func (h *handler) handleCreateCashFlow(ctx *gin.Context) {
	var req createCashFlowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.badRequest(ctx, err)
		return
	}

	cf, err := h.svc.CashFlows.RecordCashFlow(ctx.Request.Context(), *req.Description, *req.Amount, *req.IsInflow)
	if err != nil {
		h.internalError(ctx, "failed to record cash flow")
		return
	}
	ctx.JSON(http.StatusCreated, cf)
}

func (h *handler) handleDashboard(ctx *gin.Context) {
	stats, err := h.svc.Dashboard.ComputeStats(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, "failed to compute dashboard")
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// handleHealth pings the store and counts each collection.
func (h *handler) handleHealth(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	database := "memory"

	if h.svc.Store != nil {
		if err := h.svc.Store.Ping(rctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}
		database = "connected"
	}

	counts := make(map[string]int64, len(h.svc.Collections))
	for name, c := range h.svc.Collections {
		n, err := c.Count(rctx)
		if err != nil {
			h.logger.Warn("health check failed", zap.String("collection", name), zap.Error(err))
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": database,
				"error":    err.Error(),
			})
			return
		}
		counts[name] = n
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"database":    database,
		"collections": counts,
	})
}

func (h *handler) badRequest(ctx *gin.Context, err error) {
	h.logger.Warn("failed to bind JSON request",
		zap.String("path", ctx.FullPath()),
		zap.Error(err),
	)
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
}

// internalError hides store details from the client; the service has
// already logged them.
func (h *handler) internalError(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
