package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/models"
	"github.com/charlesng35/notesd/internal/services"
	"github.com/charlesng35/notesd/pkg/response"
)

// NoteHandler exposes CRUD operations over the requesting user's notes.
type NoteHandler struct {
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type createNoteRequest struct {
	Title     string  `json:"title" validate:"required,min=1,max=255"`
	Content   string  `json:"content"`
	TileColor string  `json:"tileColor" validate:"max=100"`
	LabelID   *string `json:"labelId"`
}

type updateNoteRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content   *string `json:"content"`
	TileColor *string `json:"tileColor" validate:"omitempty,max=100"`
	LabelID   *string `json:"labelId"`
}

type noteLabelView struct {
	Title string `json:"title"`
}

type noteView struct {
	ID         string         `json:"id"`
	LabelID    *string        `json:"labelId"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	TileColor  string         `json:"tileColor"`
	IsArchived bool           `json:"isArchived"`
	Label      *noteLabelView `json:"label"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toNoteView(note *models.Note) noteView {
	view := noteView{
		ID:         note.ID,
		LabelID:    note.LabelID,
		Title:      note.Title,
		Content:    note.Content,
		TileColor:  note.TileColor,
		IsArchived: note.IsArchived,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
	if note.Label != nil {
		view.Label = &noteLabelView{Title: note.Label.Title}
	}
	return view
}

func toNoteViews(notes []models.Note) []noteView {
	views := make([]noteView, 0, len(notes))
	for i := range notes {
		views = append(views, toNoteView(&notes[i]))
	}
	return views
}

// GET /api/v1/note
func (h *NoteHandler) List(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	notes, err := h.notes.List(requestContext(c), identity.UserID)
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusOK, toNoteViews(notes))
}

// POST /api/v1/note
func (h *NoteHandler) Create(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req createNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	note, err := h.notes.Create(requestContext(c), identity.UserID, services.CreateNoteInput{
		Title:     req.Title,
		Content:   req.Content,
		TileColor: req.TileColor,
		LabelID:   req.LabelID,
	})
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toNoteView(note))
}

// GET /api/v1/note/:id
func (h *NoteHandler) Get(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	note, err := h.notes.Get(requestContext(c), identity.UserID, c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusOK, toNoteView(note))
}

// PATCH /api/v1/note/:id
func (h *NoteHandler) Update(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req updateNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	note, err := h.notes.Update(requestContext(c), identity.UserID, c.Param("id"), services.UpdateNoteInput{
		Title:     req.Title,
		Content:   req.Content,
		TileColor: req.TileColor,
		LabelID:   req.LabelID,
	})
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusOK, toNoteView(note))
}

// DELETE /api/v1/note/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	if err := h.notes.Delete(requestContext(c), identity.UserID, c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Note deleted succesfully")
}
