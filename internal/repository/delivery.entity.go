package repository

import (
	"time"

	"github.com/lightera/bundokai/internal/model"
)

type DeliveryItemEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Name         string    `db:"name"          gorm:"column:name;not null;uniqueIndex"`
	Category     string    `db:"category"      gorm:"column:category;not null;index"`
	Description  string    `db:"description"   gorm:"column:description"`
	InitialStock int       `db:"initial_stock" gorm:"column:initial_stock;not null;default:0"`
	CurrentStock int       `db:"current_stock" gorm:"column:current_stock;not null;default:0"`
	UnitPrice    float64   `db:"unit_price"    gorm:"column:unit_price;not null;default:0"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryItemEntity) TableName() string {
	return "delivery_items"
}

type DeliveryLogEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	ParticipantID int64     `db:"participant_id" gorm:"column:participant_id;not null;index"`
	ItemID        int64     `db:"item_id"        gorm:"column:item_id;not null;index"`
	EmployeeNo    string    `db:"employee_no"    gorm:"column:employee_no"`
	DeliveryTime  time.Time `db:"delivery_time"  gorm:"column:delivery_time;autoCreateTime"`
	Quantity      int       `db:"quantity"       gorm:"column:quantity;not null;default:1"`
	Status        string    `db:"status"         gorm:"column:status;not null;default:delivered"`
	Operator      string    `db:"operator"       gorm:"column:operator"`
	Notes         string    `db:"notes"          gorm:"column:notes"`
}

func (DeliveryLogEntity) TableName() string {
	return "delivery_logs"
}

func toDeliveryItemModel(e *DeliveryItemEntity) *model.DeliveryItem {
	if e == nil {
		return nil
	}
	return &model.DeliveryItem{
		ID:           e.ID,
		Name:         e.Name,
		Category:     e.Category,
		Description:  e.Description,
		InitialStock: e.InitialStock,
		CurrentStock: e.CurrentStock,
		UnitPrice:    e.UnitPrice,
		CreatedAt:    e.CreatedAt,
	}
}

func toDeliveryLogModel(e *DeliveryLogEntity) *model.DeliveryLog {
	if e == nil {
		return nil
	}
	return &model.DeliveryLog{
		ID:            e.ID,
		ParticipantID: e.ParticipantID,
		ItemID:        e.ItemID,
		EmployeeNo:    e.EmployeeNo,
		DeliveryTime:  e.DeliveryTime,
		Quantity:      e.Quantity,
		Status:        e.Status,
		Operator:      e.Operator,
		Notes:         e.Notes,
	}
}
