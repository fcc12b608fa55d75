package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/notesd/internal/auth"
	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/services"
	"github.com/charlesng35/notesd/pkg/response"
)

// AuthHandler manages signup, login and logout.
type AuthHandler struct {
	users     *services.UserService
	lifecycle *iauth.Lifecycle
	cookies   *middleware.CookieJar
}

func NewAuthHandler(users *services.UserService, lifecycle *iauth.Lifecycle, cookies *middleware.CookieJar) *AuthHandler {
	return &AuthHandler{users: users, lifecycle: lifecycle, cookies: cookies}
}

type signupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=15"`
	Password        string `json:"password" validate:"required,min=3,max=60"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Signup(ctx, services.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		abort(c, err)
		return
	}

	issued, err := h.lifecycle.Issue(ctx, user, middleware.RequestMetadata(c), "signup")
	if err != nil {
		abort(c, err)
		return
	}

	h.cookies.SetPair(c, issued.Tokens)
	response.SuccessWith(c, http.StatusCreated, "user", h.users.Public(user))
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		abort(c, err)
		return
	}

	issued, err := h.lifecycle.Issue(ctx, user, middleware.RequestMetadata(c), "login")
	if err != nil {
		abort(c, err)
		return
	}

	h.cookies.SetPair(c, issued.Tokens)
	response.SuccessWith(c, http.StatusOK, "user", h.users.Public(user))
}

// POST /api/auth/logout
//
// Logout is idempotent: cookies are cleared whether or not a session was found.
func (h *AuthHandler) Logout(c *gin.Context) {
	creds := h.cookies.Read(c)
	h.cookies.Clear(c)

	if err := h.lifecycle.Revoke(requestContext(c), creds.Refresh); err != nil {
		abort(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Logout success")
}
