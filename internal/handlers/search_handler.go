package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Searcher finds bookable trips and cars annotated with seat availability
type Searcher interface {
	SearchTrips(ctx context.Context, params models.TripSearchParams) ([]*models.TripSearchResult, error)
	SearchCars(ctx context.Context, params models.CarSearchParams) ([]*models.CarSearchResult, error)
}

// SearchHandler handles HTTP requests for trip and car search
type SearchHandler struct {
	search Searcher
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search Searcher, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		search: search,
		logger: logger,
	}
}

// SearchTrips handles GET /api/trips/search
// @Summary Search for bookable trips
// @Tags Search
// @Produce json
// @Param from_city query string true "Departure city"
// @Param to_city query string true "Destination city"
// @Param departure_date query string true "YYYY-MM-DD"
// @Param num_seats query int false "Minimum available seats"
// @Router /api/trips/search [get]
func (h *SearchHandler) SearchTrips(c *gin.Context) {
	var params models.TripSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		errorBody(c, http.StatusBadRequest, "invalid_request", "Invalid search parameters")
		return
	}

	start := time.Now()
	results, err := h.search.SearchTrips(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"from":           params.FromCity,
		"to":             params.ToCity,
		"date":           params.DepartureDate,
		"results_count":  len(results),
		"search_time_ms": time.Since(start).Milliseconds(),
	}).Info("Trip search completed")

	c.JSON(http.StatusOK, gin.H{
		"trips": results,
		"count": len(results),
	})
}

// SearchCars handles GET /api/cars/search
func (h *SearchHandler) SearchCars(c *gin.Context) {
	var params models.CarSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		errorBody(c, http.StatusBadRequest, "invalid_request", "Invalid search parameters")
		return
	}

	results, err := h.search.SearchCars(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cars":  results,
		"count": len(results),
	})
}
