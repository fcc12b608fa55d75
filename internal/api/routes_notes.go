package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/handlers"
)

func registerNoteRoutes(api *gin.RouterGroup, notes *handlers.NoteHandler, archive *handlers.ArchiveHandler) {
	group := api.Group("/note")
	{
		group.GET("", notes.List)
		group.POST("", notes.Create)
		group.GET("/:id", notes.Get)
		group.PATCH("/:id", notes.Update)
		group.DELETE("/:id", notes.Delete)
	}

	archived := api.Group("/archive")
	{
		archived.GET("", archive.List)
		archived.PATCH("/:id", archive.SetStatus)
	}
}

func registerLabelRoutes(api *gin.RouterGroup, handler *handlers.LabelHandler) {
	labels := api.Group("/label")
	{
		labels.GET("", handler.List)
		labels.POST("", handler.Create)
		labels.GET("/:id", handler.Get)
		labels.PATCH("/:id", handler.Update)
		labels.DELETE("/:id", handler.Delete)
	}
}
