package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/lightera/bundokai/internal/model"
	xhttp "github.com/lightera/bundokai/pkg/http"
)

type StatsService interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	Statistics(ctx context.Context) (*model.CheckinStatistics, error)
}

type StatsHandler struct {
	svc StatsService
}

// RegisterStatsRoutes mounts the stats surface behind admin auth.
func RegisterStatsRoutes(e *router.Group, h *StatsHandler, auth AuthService) {
	e.GET("/stats/dashboard", h.Dashboard)
	e.GET("/stats/checkins", RequireAdmin(auth, h.Statistics))
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{
		svc: svc,
	}
}

func (h *StatsHandler) Dashboard(ctx *xhttp.RequestCtx) {
	stats, err := h.svc.Dashboard(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}

func (h *StatsHandler) Statistics(ctx *xhttp.RequestCtx) {
	stats, err := h.svc.Statistics(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}
