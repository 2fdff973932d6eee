package order

import "context"

// Repository defines persistence operations for canonical order records.
// Implementations map storage failures to shared.ErrPersistence and absent
// records to shared.ErrNotFound.
type Repository interface {
	// Upsert inserts a new record when OrderID is absent, otherwise replaces
	// all mutable fields of the existing row with the incoming values (full
	// replace, not field merge - a nil optional field clears the stored
	// column). Returns the stored record. Safe under concurrent calls for
	// the same OrderID; last write wins.
	Upsert(ctx context.Context, record *Order) (*Order, error)

	// List returns all stored records in storage-native order.
	List(ctx context.Context) ([]Order, error)

	// FindByOrderID returns the record for the external order id.
	FindByOrderID(ctx context.Context, orderID string) (*Order, error)

	// UpdateTags reconciles the current tag set with the given deltas and
	// persists the result. The empty result set is persisted as NULL.
	UpdateTags(ctx context.Context, orderID string, current, adds, removes []string) (*Order, error)
}
