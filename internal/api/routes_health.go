package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/handlers"
	"github.com/charlesng35/notesd/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager) {
	health := handlers.Health(manager)
	r.GET("/health", health)
	r.GET("/api/health", health)
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": monitoring.StatusUp})
	})
}
