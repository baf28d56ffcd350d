package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type searchRequest struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	Day         int    `form:"day" binding:"required"`
	Direct      bool   `form:"direct"`
	Limit       int    `form:"limit,default=10"`
}

type itineraryResponse struct {
	Index    int             `json:"index"`
	Duration int             `json:"duration"`
	Cost     string          `json:"cost"`
	Flights  []domain.Flight `json:"flights"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, err := h.service.Search(c.Request.Context(), domain.SearchQuery{
		Origin:         req.Origin,
		Destination:    req.Destination,
		DayOfMonth:     req.Day,
		DirectOnly:     req.Direct,
		MaxItineraries: req.Limit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSearch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	resp := make([]itineraryResponse, 0, len(found))
	for i, it := range found {
		resp = append(resp, itineraryResponse{
			Index:    i,
			Duration: it.Duration(),
			Cost:     it.Cost().String(),
			Flights:  it.Legs(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrFlightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, flight)
}
