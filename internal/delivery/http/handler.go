package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/profitlens/backend/internal/domain"
)

// Scraper is the scrape usecase surface the handlers need.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string, cost float64, limit int) (*domain.ScrapeResult, error)
	Invalidate()
}

// ProfitCalculator computes a VAT/profit breakdown for one sale.
type ProfitCalculator interface {
	Calculate(in domain.ProfitInput) domain.ProfitBreakdown
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scraper Scraper
	profit  ProfitCalculator
}

// NewHandler creates a new HTTP handler
func NewHandler(scraper Scraper, profit ProfitCalculator) *Handler {
	return &Handler{
		scraper: scraper,
		profit:  profit,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "profitlens-backend",
		"version": "1.0.0",
	})
}

// ScrapeRequest is the body of a scrape call. Cost feeds the per-row profit
// column; Limit caps listing-mode product lookups and is clamped server-side.
type ScrapeRequest struct {
	URL   string  `json:"url" binding:"required"`
	Cost  float64 `json:"cost"`
	Limit int     `json:"limit"`
}

// Scrape resolves the sellers of one product page or one listing page.
func (h *Handler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url is required",
		})
		return
	}

	result, err := h.scraper.Scrape(c.Request.Context(), req.URL, req.Cost, req.Limit)
	if err != nil {
		status := statusForScrapeError(err)
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Profit computes the VAT decomposition and net profit for one sale.
func (h *Handler) Profit(c *gin.Context) {
	var req domain.ProfitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid profit input: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.profit.Calculate(req))
}

// InvalidateCache drops the cached page snapshot. The extension calls this
// when the user navigates to a different product page.
func (h *Handler) InvalidateCache(c *gin.Context) {
	h.scraper.Invalidate()
	c.JSON(http.StatusOK, gin.H{
		"status": "invalidated",
	})
}

// statusForScrapeError maps the scrape error taxonomy onto HTTP statuses.
func statusForScrapeError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNoSellers):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrScrapeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrAPIFailure), errors.Is(err, domain.ErrPageFetchFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
