package order

import (
	"time"

	"github.com/google/uuid"
)

// Order is the canonical, storage-ready representation of a shop order,
// independent of the platform's wire format. OrderID is the external
// Shopify order identifier and the upsert key; the surrogate ID exists
// only for persistence bookkeeping.
type Order struct {
	ID               uuid.UUID
	OrderID          string
	OrderNumber      string
	TotalPrice       string
	PaymentGateway   *string
	CustomerEmail    *string
	CustomerFullName *string
	CustomerAddress  *string
	Tags             *string
	CreatedAt        time.Time
	SyncedAt         time.Time
}

// TagList returns the order's tags as a slice, empty when unset.
func (o *Order) TagList() []string {
	return ParseTags(o.Tags)
}
