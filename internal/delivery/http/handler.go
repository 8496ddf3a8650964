package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pricescout/backend/internal/domain"
)

// Comparer runs the comparison pipeline
type Comparer interface {
	Compare(ctx context.Context, request *domain.CompareRequest) (*domain.CompareResponse, error)
}

// CountryCatalog lists supported countries
type CountryCatalog interface {
	SupportedCountries() []string
	Countries() []domain.CountryInfo
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparer Comparer
	catalog  CountryCatalog
}

// NewHandler creates a new HTTP handler
func NewHandler(comparer Comparer, catalog CountryCatalog) *Handler {
	return &Handler{
		comparer: comparer,
		catalog:  catalog,
	}
}

// ErrorResponse is the body of every 4xx/5xx reply
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"service":             "pricescout-backend",
		"version":             "1.0.0",
		"supported_countries": h.catalog.SupportedCountries(),
	})
}

// Countries lists every supported country with its currency and retailers
func (h *Handler) Countries(c *gin.Context) {
	countries := h.catalog.Countries()
	c.JSON(http.StatusOK, gin.H{
		"countries": countries,
		"total":     len(countries),
	})
}

// Compare handles price comparison requests
func (h *Handler) Compare(c *gin.Context) {
	var req domain.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Invalid request format",
			Detail: err.Error(),
		})
		return
	}

	resp, err := h.comparer.Compare(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, req, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleError maps pipeline errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, req domain.CompareRequest, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Invalid request",
			Detail: "country and query must not be blank",
		})
	case errors.Is(err, domain.ErrUnsupportedCountry):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Unsupported country",
			Detail: fmt.Sprintf("Country %s not supported. Supported countries: %s",
				strings.TrimSpace(req.Country), strings.Join(h.catalog.SupportedCountries(), ", ")),
		})
	default:
		log.Printf("[COMPARE] request %s failed: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
		})
	}
}
