package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/handlers"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	users := api.Group("/user")
	{
		users.GET("/me", handler.Me)
		users.DELETE("/me", handler.Delete)
		users.PATCH("/update-username", handler.UpdateUsername)
		users.PATCH("/update-password", handler.UpdatePassword)
		users.PATCH("/update-avatar", handler.UpdateAvatar)
	}
}
