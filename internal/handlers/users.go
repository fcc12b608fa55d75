package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/services"
	appErrors "github.com/charlesng35/notesd/pkg/errors"
	"github.com/charlesng35/notesd/pkg/response"
)

const maxAvatarBytes = 5 << 20

var (
	errNoFileUploaded = appErrors.NewValidation("No file uploaded")
	errAvatarTooLarge = appErrors.NewValidation(fmt.Sprintf("Avatar must be at most %dMB", maxAvatarBytes>>20))
)

// UserHandler serves the requesting user's own account.
type UserHandler struct {
	users   *services.UserService
	cookies *middleware.CookieJar
}

func NewUserHandler(users *services.UserService, cookies *middleware.CookieJar) *UserHandler {
	return &UserHandler{users: users, cookies: cookies}
}

type updateUsernameRequest struct {
	Username string `json:"username" validate:"required,min=2,max=15"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=3,max=60"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// GET /api/v1/user/me
func (h *UserHandler) Me(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	user, err := h.users.FindByID(requestContext(c), identity.UserID)
	if err != nil {
		abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.users.Public(user))
}

// PATCH /api/v1/user/update-username
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req updateUsernameRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.UpdateUsername(requestContext(c), identity.UserID, req.Username)
	if err != nil {
		abort(c, err)
		return
	}

	response.WithMessage(c, http.StatusOK, "Username updated succesfully", gin.H{"username": user.Username})
}

// PATCH /api/v1/user/update-password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	var req updatePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.users.UpdatePassword(requestContext(c), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		abort(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Password updated succesfully")
}

// PATCH /api/v1/user/update-avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		abort(c, errNoFileUploaded)
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image") {
		abort(c, services.ErrNotAnImage)
		return
	}
	if file.Size > maxAvatarBytes {
		abort(c, errAvatarTooLarge)
		return
	}

	src, err := file.Open()
	if err != nil {
		abort(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	defer src.Close()

	user, err := h.users.UpdateAvatar(requestContext(c), identity.UserID, src)
	if err != nil {
		abort(c, err)
		return
	}

	response.WithMessage(c, http.StatusOK, "Avatar updated succesfully", gin.H{"avatar": h.users.AvatarURL(user.Avatar)})
}

// DELETE /api/v1/user/me
func (h *UserHandler) Delete(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		abort(c, err)
		return
	}

	if err := h.users.Delete(requestContext(c), identity.UserID); err != nil {
		abort(c, err)
		return
	}

	h.cookies.Clear(c)
	response.Message(c, http.StatusOK, "Account deleted successfully")
}
