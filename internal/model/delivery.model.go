package model

import (
	"errors"
	"time"
)

// Item categories match the original event catalog.
const (
	CategoryParty          = "Festa"
	CategoryBasicBasket    = "Cesta Básica"
	CategoryToys           = "Brinquedos"
	CategorySchoolSupplies = "Material Escolar"
)

func Categories() []string {
	return []string{CategoryParty, CategoryBasicBasket, CategoryToys, CategorySchoolSupplies}
}

const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusPending   = "pending"
	DeliveryStatusCancelled = "cancelled"
)

type DeliveryItem struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	InitialStock   int       `json:"initial_stock"`
	CurrentStock   int       `json:"current_stock"`
	UnitPrice      float64   `json:"unit_price"`
	ItemsDelivered int       `json:"items_delivered"`
	CreatedAt      time.Time `json:"created_at"`
}

type DeliveryLog struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	ItemID        int64     `json:"item_id"`
	EmployeeNo    string    `json:"employee_no,omitempty"`
	DeliveryTime  time.Time `json:"delivery_time"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	Operator      string    `json:"operator,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// StockOp is the kind of stock adjustment.
type StockOp string

const (
	StockAdd      StockOp = "add"
	StockSubtract StockOp = "subtract"
	StockSet      StockOp = "set"
)

type AdjustStockRequest struct {
	ItemID   int64   `json:"item_id"`
	Op       StockOp `json:"op"`
	Quantity int     `json:"quantity"`
}

func (r AdjustStockRequest) Validate() error {
	switch r.Op {
	case StockAdd, StockSubtract, StockSet:
	default:
		return errors.New("op must be add, subtract or set")
	}
	if r.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

type RecordDeliveryRequest struct {
	ParticipantID int64  `json:"participant_id"`
	ItemID        int64  `json:"item_id"`
	Quantity      int    `json:"quantity"`
	Operator      string `json:"operator"`
	Notes         string `json:"notes"`
}

func (r RecordDeliveryRequest) Validate() error {
	if r.ParticipantID == 0 {
		return errors.New("participant_id is required")
	}
	if r.ItemID == 0 {
		return errors.New("item_id is required")
	}
	if r.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}
