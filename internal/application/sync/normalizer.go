package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopsync/backend/internal/domain/order"
	"github.com/shopsync/backend/internal/domain/shared"
)

// OrderWebhookPayload mirrors the order resource carried by Shopify's REST
// order webhooks. Only the fields the canonical record needs are declared;
// the rest of the payload is ignored.
type OrderWebhookPayload struct {
	ID                  NumericString    `json:"id"`
	OrderNumber         NumericString    `json:"order_number"`
	TotalPrice          string           `json:"total_price"`
	Email               string           `json:"email"`
	PaymentGatewayNames []string         `json:"payment_gateway_names"`
	Customer            *CustomerPayload `json:"customer"`
	ShippingAddress     json.RawMessage  `json:"shipping_address"`
	Tags                string           `json:"tags"`
	CreatedAt           *time.Time       `json:"created_at"`
	CancelledAt         *time.Time       `json:"cancelled_at"`
}

// CustomerPayload is the nested customer object of an order webhook
type CustomerPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// NumericString decodes a JSON value that Shopify emits either as a number
// or as a quoted string, keeping the textual form either way.
type NumericString string

// UnmarshalJSON implements json.Unmarshaler
func (n *NumericString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

// NormalizeOrderPayload converts a raw order webhook body into the canonical
// record. Normalization is lenient: every optional field that is absent maps
// to nil, and only a missing order identifier rejects the payload. The price
// string is carried verbatim, never parsed.
func NormalizeOrderPayload(raw []byte) (*order.Order, error) {
	var payload OrderWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	record := normalize(&payload)
	if record.OrderID == "" {
		return nil, shared.ErrMalformedPayload
	}
	return record, nil
}

func normalize(payload *OrderWebhookPayload) *order.Order {
	record := &order.Order{
		OrderID:     string(payload.ID),
		OrderNumber: string(payload.OrderNumber),
		TotalPrice:  payload.TotalPrice,
	}

	if len(payload.PaymentGatewayNames) > 0 && payload.PaymentGatewayNames[0] != "" {
		gateway := payload.PaymentGatewayNames[0]
		record.PaymentGateway = &gateway
	}

	// The customer object's email is authoritative; the top-level email is
	// a checkout contact field that may differ or be absent.
	email := payload.Email
	if payload.Customer != nil && payload.Customer.Email != "" {
		email = payload.Customer.Email
	}
	if email != "" {
		record.CustomerEmail = &email
	}

	if payload.Customer != nil {
		fullName := strings.TrimSpace(payload.Customer.FirstName + " " + payload.Customer.LastName)
		if fullName != "" {
			record.CustomerFullName = &fullName
		}
	}

	if address := compactJSON(payload.ShippingAddress); address != "" {
		record.CustomerAddress = &address
	}

	if payload.Tags != "" {
		tags := payload.Tags
		record.Tags = &tags
	}

	if payload.CreatedAt != nil {
		record.CreatedAt = *payload.CreatedAt
	} else {
		record.CreatedAt = time.Now().UTC()
	}

	return record
}

// compactJSON renders a raw JSON value as its compact serialization, or ""
// for absent/null values
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}
