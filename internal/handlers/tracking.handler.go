package handlers

import (
	"context"
	"time"

	xhttp "github.com/lightera/bundokai/pkg/http"
)

// trackingPixel is a 1x1 transparent GIF.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type OpenTracker interface {
	MarkOpened(ctx context.Context, token string, at time.Time) error
}

type TrackingHandler struct {
	emails OpenTracker
}

func RegisterTrackingRoutes(r *xhttp.Router, h *TrackingHandler) {
	r.GET("/t/open/{token}", h.Open)
}

func NewTrackingHandler(emails OpenTracker) *TrackingHandler {
	return &TrackingHandler{
		emails: emails,
	}
}

// Open records the first open of an email and always answers with the
// pixel. Mail clients retry aggressively, so errors are swallowed rather
// than rendered into somebody's inbox.
func (h *TrackingHandler) Open(ctx *xhttp.RequestCtx) {
	if token, _ := ctx.UserValue("token").(string); token != "" {
		_ = h.emails.MarkOpened(ctx, token, time.Now())
	}

	ctx.Response.Header.Set("Content-Type", "image/gif")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(trackingPixel)
}
