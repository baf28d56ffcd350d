package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface: flight lookups, command sessions,
// a health probe and Prometheus metrics.
func NewRouter(flights *FlightHandler, sessions *SessionHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	flights.Register(router.Group("/flights"))
	sessions.Register(router.Group("/sessions"))
	return router
}
