package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/lightera/bundokai/internal/model"
	xhttp "github.com/lightera/bundokai/pkg/http"
)

type CheckinService interface {
	CheckInByCode(ctx context.Context, code string, operator string) (*model.CheckinResult, error)
	CheckInByID(ctx context.Context, participantID int64, operator string) (*model.CheckinResult, error)
	BulkCheckIn(ctx context.Context, participantIDs []int64, operator string) (*model.BulkCheckinReport, error)
	Status(ctx context.Context, code string) (*model.ParticipantSummary, error)
}

type CheckinHandler struct {
	svc CheckinService
}

// RegisterCheckinRoutes wires the gate endpoints. Scanning is open to the
// gate stations; manual and bulk check-in belong to the admin screen.
func RegisterCheckinRoutes(e *router.Group, h *CheckinHandler, auth AuthService) {
	e.POST("/checkin", h.CheckIn)
	e.POST("/checkin/manual", RequireAdmin(auth, h.ManualCheckIn))
	e.POST("/checkin/bulk", RequireAdmin(auth, h.BulkCheckIn))
	e.GET("/checkin/status/{code}", h.Status)
}

func NewCheckinHandler(svc CheckinService) *CheckinHandler {
	return &CheckinHandler{
		svc: svc,
	}
}

type checkinRequest struct {
	Code     string `json:"code"`
	Operator string `json:"operator"`
}

type manualCheckinRequest struct {
	ParticipantID int64  `json:"participant_id"`
	Operator      string `json:"operator"`
}

type bulkCheckinRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
	Operator       string  `json:"operator"`
}

type checkinResponse struct {
	Status      string                    `json:"status"`
	Participant *model.ParticipantSummary `json:"participant,omitempty"`
	CheckinTime string                    `json:"checkin_time,omitempty"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *CheckinHandler) CheckIn(ctx *xhttp.RequestCtx) {
	var req checkinRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.CheckInByCode(ctx, req.Code, req.Operator)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeCheckinResult(ctx, result)
}

func (h *CheckinHandler) ManualCheckIn(ctx *xhttp.RequestCtx) {
	var req manualCheckinRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ParticipantID == 0 {
		writeError(ctx, xhttp.StatusBadRequest, "participant_id is required")
		return
	}

	result, err := h.svc.CheckInByID(ctx, req.ParticipantID, req.Operator)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeCheckinResult(ctx, result)
}

func (h *CheckinHandler) BulkCheckIn(ctx *xhttp.RequestCtx) {
	var req bulkCheckinRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.ParticipantIDs) == 0 {
		writeError(ctx, xhttp.StatusBadRequest, "participant_ids is required")
		return
	}

	report, err := h.svc.BulkCheckIn(ctx, req.ParticipantIDs, req.Operator)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, report)
}

func (h *CheckinHandler) Status(ctx *xhttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)

	summary, err := h.svc.Status(ctx, code)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

// writeCheckinResult renders the tri-state outcome. Both accepted and
// already-checked-in are 200s so the scanner UI treats them as answers,
// not failures; an unknown code is a 404.
func writeCheckinResult(ctx *xhttp.RequestCtx, result *model.CheckinResult) {
	switch result.Outcome {
	case model.CheckinAccepted:
		writeJSON(ctx, xhttp.StatusOK, checkinResponse{
			Status:      "checked_in",
			Participant: result.Participant,
			CheckinTime: formatCheckinTime(result.CheckIn),
		})
	case model.CheckinDuplicate:
		writeJSON(ctx, xhttp.StatusOK, checkinResponse{
			Status:      "already_checked_in",
			Participant: result.Participant,
			CheckinTime: formatCheckinTime(result.CheckIn),
		})
	default:
		writeError(ctx, xhttp.StatusNotFound, "unknown code")
	}
}

func formatCheckinTime(c *model.CheckIn) string {
	if c == nil {
		return ""
	}
	return c.CheckinTime.Format(time.RFC3339)
}
