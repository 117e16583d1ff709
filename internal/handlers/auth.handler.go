package handlers

import (
	"strings"
	"time"

	"github.com/fasthttp/router"
	xhttp "github.com/lightera/bundokai/pkg/http"
)

type AuthService interface {
	Login(username, password string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type AuthHandler struct {
	svc AuthService
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler) {
	e.POST("/auth/login", h.Login)
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{
		svc: svc,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	token, expiresAt, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// RequireAdmin wraps a handler so it only runs with a valid bearer token.
// The admin username lands in the request user values for audit logging.
func RequireAdmin(svc AuthService, next func(ctx *xhttp.RequestCtx)) func(ctx *xhttp.RequestCtx) {
	return func(ctx *xhttp.RequestCtx) {
		auth := string(ctx.Request.Header.Peek("Authorization"))
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
			return
		}

		subject, err := svc.Verify(token)
		if err != nil {
			writeError(ctx, xhttp.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx.SetUserValue("admin", subject)
		next(ctx)
	}
}
