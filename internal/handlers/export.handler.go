package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	xhttp "github.com/lightera/bundokai/pkg/http"
)

type ExportService interface {
	ParticipantsXLSX(ctx context.Context, ids []int64) ([]byte, error)
}

type ExportHandler struct {
	svc ExportService
}

// RegisterExportRoutes mounts the export surface behind admin auth.
func RegisterExportRoutes(e *router.Group, h *ExportHandler, auth AuthService) {
	e.GET("/export/participants", RequireAdmin(auth, h.Participants))
}

func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{
		svc: svc,
	}
}

// Participants streams the participant workbook. An optional ids query
// parameter (comma separated) restricts the export.
func (h *ExportHandler) Participants(ctx *xhttp.RequestCtx) {
	var ids []int64
	if v := query(ctx, "ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				writeError(ctx, xhttp.StatusBadRequest, "invalid ids parameter")
				return
			}
			ids = append(ids, id)
		}
	}

	data, err := h.svc.ParticipantsXLSX(ctx, ids)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
		return
	}

	filename := "participants_" + time.Now().Format("2006-01-02") + ".xlsx"
	ctx.Response.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(data)
}
