package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopsync/backend/internal/domain/order"
)

// OrderModel is the persistence model for synced orders. The external
// order_id carries a unique index and is the upsert key.
type OrderModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID          string    `gorm:"column:order_id;uniqueIndex;not null"`
	OrderNumber      string    `gorm:"not null"`
	TotalPrice       string    `gorm:"not null"`
	PaymentGateway   *string
	CustomerEmail    *string
	CustomerFullName *string
	CustomerAddress  *string   `gorm:"type:text"`
	Tags             *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null"`
	SyncedAt         time.Time `gorm:"not null"`
}

// TableName specifies the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts OrderModel to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		ID:               m.ID,
		OrderID:          m.OrderID,
		OrderNumber:      m.OrderNumber,
		TotalPrice:       m.TotalPrice,
		PaymentGateway:   m.PaymentGateway,
		CustomerEmail:    m.CustomerEmail,
		CustomerFullName: m.CustomerFullName,
		CustomerAddress:  m.CustomerAddress,
		Tags:             m.Tags,
		CreatedAt:        m.CreatedAt,
		SyncedAt:         m.SyncedAt,
	}
}

// OrderModelFromDomain converts a domain Order to OrderModel
func OrderModelFromDomain(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:               o.ID,
		OrderID:          o.OrderID,
		OrderNumber:      o.OrderNumber,
		TotalPrice:       o.TotalPrice,
		PaymentGateway:   o.PaymentGateway,
		CustomerEmail:    o.CustomerEmail,
		CustomerFullName: o.CustomerFullName,
		CustomerAddress:  o.CustomerAddress,
		Tags:             o.Tags,
		CreatedAt:        o.CreatedAt,
		SyncedAt:         o.SyncedAt,
	}
}
