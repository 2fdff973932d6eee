package order

import "context"

// UserError is a field-level rejection reported by the commerce platform for
// an otherwise accepted mutation. The platform returns HTTP 200 for these, so
// they have to be surfaced explicitly rather than treated as transport errors.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// TagService mutates the tag set of an order on the commerce platform.
// The platform copy is authoritative for merchants; the local mirror is
// reconciled separately after the remote mutation succeeds.
type TagService interface {
	// AddTags adds tags to the platform order. Returned user errors indicate
	// per-tag rejections; a non-nil error indicates the request itself failed.
	AddTags(ctx context.Context, orderID string, tags []string) ([]UserError, error)

	// RemoveTags removes tags from the platform order.
	RemoveTags(ctx context.Context, orderID string, tags []string) ([]UserError, error)
}
