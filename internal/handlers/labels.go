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

// LabelHandler exposes CRUD operations over the requesting user's labels.
type LabelHandler struct {
	labels *services.LabelService
}

func NewLabelHandler(labels *services.LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

type labelRequest struct {
	Title string `json:"title" validate:"required,min=1,max=60"`
}

type labelView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toLabelView(label *models.Label) labelView {
	return labelView{
		ID:        label.ID,
		Title:     label.Title,
		CreatedAt: label.CreatedAt,
		UpdatedAt: label.UpdatedAt,
	}
}

// GET /api/v1/label
func (h *LabelHandler) List(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	labels, err := h.labels.List(requestContext(c), identity.UserID)
	if err != nil {
		abort(c, err)
		return
	}

	views := make([]labelView, 0, len(labels))
	for i := range labels {
		views = append(views, toLabelView(&labels[i]))
	}
	response.Success(c, http.StatusOK, views)
}

// POST /api/v1/label
func (h *LabelHandler) Create(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req labelRequest
	if !bindAndValidate(c, &req) {
		return
	}

	label, err := h.labels.Create(requestContext(c), identity.UserID, req.Title)
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toLabelView(label))
}

// GET /api/v1/label/:id
func (h *LabelHandler) Get(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	label, err := h.labels.Get(requestContext(c), identity.UserID, c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusOK, toLabelView(label))
}

// PATCH /api/v1/label/:id
func (h *LabelHandler) Update(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req labelRequest
	if !bindAndValidate(c, &req) {
		return
	}

	label, err := h.labels.Rename(requestContext(c), identity.UserID, c.Param("id"), req.Title)
	if err != nil {
		abort(c, err)
		return
	}
	response.Success(c, http.StatusOK, toLabelView(label))
}

// DELETE /api/v1/label/:id
func (h *LabelHandler) Delete(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	if err := h.labels.Delete(requestContext(c), identity.UserID, c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Label deleted succesfully")
}
