package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/notesd/internal/auth"
	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/services"
	appErrors "github.com/charlesng35/notesd/pkg/errors"
	"github.com/charlesng35/notesd/pkg/metrics"
	"github.com/charlesng35/notesd/pkg/response"
)

// SessionHandler lists and revokes the requesting user's sessions.
type SessionHandler struct {
	sessions *iauth.SessionService
	cookies  *middleware.CookieJar
}

func NewSessionHandler(sessions *iauth.SessionService, cookies *middleware.CookieJar) *SessionHandler {
	return &SessionHandler{sessions: sessions, cookies: cookies}
}

// sessionView never carries the token, user agent, expiry or owner.
type sessionView struct {
	ID        string    `json:"id"`
	SessionIP string    `json:"sessionIP"`
	SessionOS string    `json:"sessionOS"`
	CreatedAt time.Time `json:"createdAt"`
	Current   bool      `json:"current"`
}

// GET /api/v1/session
func (h *SessionHandler) List(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	sessions, err := h.sessions.ListByUser(requestContext(c), identity.UserID)
	if err != nil {
		abort(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{
			ID:        s.ID,
			SessionIP: s.SessionIP,
			SessionOS: s.SessionOS,
			CreatedAt: s.CreatedAt,
			Current:   s.ID == identity.SessionID,
		})
	}
	response.Success(c, http.StatusOK, views)
}

// DELETE /api/v1/session/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	id := c.Param("id")
	removed, err := h.sessions.DestroyByID(requestContext(c), identity.UserID, id)
	if err != nil {
		abort(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	if removed == 0 {
		abort(c, services.ErrSessionNotFound)
		return
	}
	metrics.SessionsRevoked.WithLabelValues("user").Add(float64(removed))

	if id == identity.SessionID {
		h.cookies.Clear(c)
	}
	response.Message(c, http.StatusOK, "Session terminated succesfully")
}

// DELETE /api/v1/session
func (h *SessionHandler) DeleteOthers(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	removed, err := h.sessions.DestroyOthers(requestContext(c), identity.UserID, identity.SessionID)
	if err != nil {
		abort(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	metrics.SessionsRevoked.WithLabelValues("user").Add(float64(removed))

	response.WithMessage(c, http.StatusOK, "Other sessions terminated successfully", gin.H{"terminated": removed})
}
