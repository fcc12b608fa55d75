package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/handlers"
)

func registerSessionRoutes(api *gin.RouterGroup, handler *handlers.SessionHandler) {
	sessions := api.Group("/session")
	{
		sessions.GET("", handler.List)
		sessions.DELETE("", handler.DeleteOthers)
		sessions.DELETE("/:id", handler.Delete)
	}
}
