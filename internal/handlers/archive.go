package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/services"
	"github.com/charlesng35/notesd/pkg/response"
)

// ArchiveHandler lists archived notes and toggles the archive flag.
type ArchiveHandler struct {
	notes *services.NoteService
}

func NewArchiveHandler(notes *services.NoteService) *ArchiveHandler {
	return &ArchiveHandler{notes: notes}
}

type archiveRequest struct {
	Status *bool `json:"status" validate:"required"`
}

// GET /api/v1/archive
func (h *ArchiveHandler) List(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	notes, err := h.notes.ListArchived(requestContext(c), identity.UserID)
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusOK, toNoteViews(notes))
}

// PATCH /api/v1/archive/:id
func (h *ArchiveHandler) SetStatus(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req archiveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	note, err := h.notes.SetArchived(requestContext(c), identity.UserID, c.Param("id"), *req.Status)
	if err != nil {
		abort(c, err)
		return
	}
	response.WithMessage(c, http.StatusOK, "Archive status updated succesfully", gin.H{"isArchived": note.IsArchived})
}
