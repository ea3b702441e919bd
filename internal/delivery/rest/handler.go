package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/NasaVasa/pricewatch/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tracker is the product and alert management surface.
type Tracker interface {
	Track(ctx context.Context, req usecase.TrackRequest) (*domain.Product, bool, error)
	CreateAlert(ctx context.Context, productID uint, recipient string, target decimal.Decimal) (*domain.PriceAlert, error)
	ListActiveAlerts(ctx context.Context, recipient string) ([]domain.PriceAlert, error)
	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID uint) (*domain.Product, error)
	PriceHistory(ctx context.Context, productID uint) ([]domain.PriceHistoryEntry, error)
}

type CycleTrigger interface {
	RunOnce(ctx context.Context) (usecase.CycleReport, error)
}

type Handler struct {
	tracker Tracker
	cycles  CycleTrigger
	logger  *zap.Logger
}

func NewHandler(tracker Tracker, cycles CycleTrigger, logger *zap.Logger) *Handler {
	return &Handler{tracker: tracker, cycles: cycles, logger: logger}
}

func (h *Handler) TrackProduct(c *gin.Context) {
	var input trackRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	product, created, err := h.tracker.Track(c.Request.Context(), usecase.TrackRequest{
		URL:   input.URL,
		Name:  input.Name,
		Store: input.Store,
	})
	if err != nil {
		h.fail(c, "track product", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toProductResponse(*product))
}

func (h *Handler) ListProducts(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	list, err := h.tracker.ListProducts(c.Request.Context(), offset, limit)
	if err != nil {
		h.fail(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(list))
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := h.tracker.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product))
}

func (h *Handler) GetPriceHistory(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	history, err := h.tracker.PriceHistory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "price history", err)
		return
	}
	c.JSON(http.StatusOK, toHistoryResponses(history))
}

func (h *Handler) CreateAlert(c *gin.Context) {
	var input alertRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	alert, err := h.tracker.CreateAlert(c.Request.Context(), input.ProductID, input.Recipient, input.TargetPrice)
	if err != nil {
		h.fail(c, "create alert", err)
		return
	}
	c.JSON(http.StatusCreated, toAlertResponse(*alert))
}

func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.tracker.ListActiveAlerts(c.Request.Context(), c.Param("recipient"))
	if err != nil {
		h.fail(c, "list alerts", err)
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// RunCycle triggers a monitoring cycle and waits for its report.
func (h *Handler) RunCycle(c *gin.Context) {
	report, err := h.cycles.RunOnce(c.Request.Context())
	if err != nil {
		h.fail(c, "run cycle", err)
		return
	}
	c.JSON(http.StatusOK, toCycleResponse(report))
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn(op+" failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	var fetchErr *domain.FetchError
	switch {
	case errors.Is(err, usecase.ErrInvalidURL),
		errors.Is(err, usecase.ErrInvalidName),
		errors.Is(err, usecase.ErrInvalidTarget),
		errors.Is(err, usecase.ErrTargetNotBelow),
		errors.Is(err, usecase.ErrInvalidRecipient):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, usecase.ErrProductNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, usecase.ErrCycleRunning):
		return http.StatusConflict, err.Error()
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "failed to fetch product page"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}
