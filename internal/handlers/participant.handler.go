package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/qr"
	"github.com/lightera/bundokai/internal/services"
	xhttp "github.com/lightera/bundokai/pkg/http"
)

type RegistrationService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.Participant, error)
	Get(ctx context.Context, id int64) (*model.Participant, error)
	GetByCode(ctx context.Context, code string) (*model.Participant, error)
	Dependents(ctx context.Context, participantID int64) ([]*model.Dependent, error)
	Search(ctx context.Context, fragment string, limit int) ([]*model.ParticipantSummary, error)
}

type ParticipantHandler struct {
	svc RegistrationService
}

func RegisterParticipantRoutes(e *router.Group, h *ParticipantHandler) {
	e.POST("/participants", h.Register)
	e.GET("/participants/search", h.Search)
	e.GET("/participants/{id}", h.Get)
	e.GET("/participants/{id}/dependents", h.Dependents)
	e.GET("/participants/code/{code}", h.GetByCode)
}

func NewParticipantHandler(svc RegistrationService) *ParticipantHandler {
	return &ParticipantHandler{
		svc: svc,
	}
}

type searchResponse struct {
	Items []*model.ParticipantSummary `json:"items"`
}

// registerResponse carries the QR image inline so the success screen can
// show it without a second request.
type registerResponse struct {
	*model.Participant
	QRPng string `json:"qr_png,omitempty"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ParticipantHandler) Register(ctx *xhttp.RequestCtx) {
	var req model.RegisterRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	p, err := h.svc.Register(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	// Image failures never fail the registration, the code is already
	// committed.
	uri, err := qr.DataURI(p.Code, 0)
	if err != nil {
		uri = ""
	}
	writeJSON(ctx, xhttp.StatusCreated, registerResponse{Participant: p, QRPng: uri})
}

func (h *ParticipantHandler) Get(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid participant id")
		return
	}

	p, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, p)
}

func (h *ParticipantHandler) GetByCode(ctx *xhttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)

	p, err := h.svc.GetByCode(ctx, code)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, p)
}

func (h *ParticipantHandler) Dependents(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid participant id")
		return
	}

	deps, err := h.svc.Dependents(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if deps == nil {
		deps = []*model.Dependent{}
	}
	writeJSON(ctx, xhttp.StatusOK, deps)
}

func (h *ParticipantHandler) Search(ctx *xhttp.RequestCtx) {
	limit := 0
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}

	items, err := h.svc.Search(ctx, query(ctx, "q"), limit)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, searchResponse{Items: items})
}

/* --------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Anything unmapped is a 500 with a generic message.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrItemNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCodeConflict),
		errors.Is(err, services.ErrInsufficientStock):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	default:
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathID(ctx *xhttp.RequestCtx, name string) (int64, error) {
	idStr, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(idStr, 10, 64)
}
