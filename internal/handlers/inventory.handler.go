package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/lightera/bundokai/internal/model"
	xhttp "github.com/lightera/bundokai/pkg/http"
)

type InventoryService interface {
	ListItems(ctx context.Context) ([]*model.DeliveryItem, error)
	GetItem(ctx context.Context, id int64) (*model.DeliveryItem, error)
	AdjustStock(ctx context.Context, req model.AdjustStockRequest) (*model.DeliveryItem, error)
	RecordDelivery(ctx context.Context, req model.RecordDeliveryRequest) (*model.DeliveryLog, error)
}

type InventoryHandler struct {
	svc InventoryService
}

// RegisterInventoryRoutes wires the warehouse endpoints, all behind the
// admin token.
func RegisterInventoryRoutes(e *router.Group, h *InventoryHandler, auth AuthService) {
	e.GET("/items", RequireAdmin(auth, h.ListItems))
	e.GET("/items/{id}", RequireAdmin(auth, h.GetItem))
	e.POST("/items/{id}/stock", RequireAdmin(auth, h.AdjustStock))
	e.POST("/deliveries", RequireAdmin(auth, h.RecordDelivery))
}

func NewInventoryHandler(svc InventoryService) *InventoryHandler {
	return &InventoryHandler{
		svc: svc,
	}
}

type itemsResponse struct {
	Items []*model.DeliveryItem `json:"items"`
}

type adjustStockRequest struct {
	Op       string `json:"op"`
	Quantity int    `json:"quantity"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *InventoryHandler) ListItems(ctx *xhttp.RequestCtx) {
	items, err := h.svc.ListItems(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, itemsResponse{Items: items})
}

func (h *InventoryHandler) GetItem(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.svc.GetItem(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, item)
}

func (h *InventoryHandler) AdjustStock(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid item id")
		return
	}

	var req adjustStockRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	item, err := h.svc.AdjustStock(ctx, model.AdjustStockRequest{
		ItemID:   id,
		Op:       model.StockOp(req.Op),
		Quantity: req.Quantity,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, item)
}

func (h *InventoryHandler) RecordDelivery(ctx *xhttp.RequestCtx) {
	var req model.RecordDeliveryRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	log, err := h.svc.RecordDelivery(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, log)
}
