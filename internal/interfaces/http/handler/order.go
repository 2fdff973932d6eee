package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopsync/backend/internal/application/orders"
	"github.com/shopsync/backend/internal/domain/order"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves the admin order endpoints backed by the local mirror
type OrderHandler struct {
	BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *orders.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// OrderResponse represents one mirrored order
type OrderResponse struct {
	OrderID          string    `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	TotalPrice       string    `json:"total_price"`
	PaymentGateway   *string   `json:"payment_gateway,omitempty"`
	CustomerEmail    *string   `json:"customer_email,omitempty"`
	CustomerFullName *string   `json:"customer_full_name,omitempty"`
	CustomerAddress  *string   `json:"customer_address,omitempty"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
	SyncedAt         time.Time `json:"synced_at"`
}

// OrderListResponse represents the order index with its aggregate total
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Count      int             `json:"count"`
	TotalPrice string          `json:"total_price"`
}

// UpdateTagsRequest carries tag deltas for one order
type UpdateTagsRequest struct {
	Adds    []string `json:"adds" binding:"omitempty,dive,min=1,max=255"`
	Removes []string `json:"removes" binding:"omitempty,dive,min=1,max=255"`
}

func toOrderResponse(record *order.Order) OrderResponse {
	return OrderResponse{
		OrderID:          record.OrderID,
		OrderNumber:      record.OrderNumber,
		TotalPrice:       record.TotalPrice,
		PaymentGateway:   record.PaymentGateway,
		CustomerEmail:    record.CustomerEmail,
		CustomerFullName: record.CustomerFullName,
		CustomerAddress:  record.CustomerAddress,
		Tags:             record.TagList(),
		CreatedAt:        record.CreatedAt,
		SyncedAt:         record.SyncedAt,
	}
}

// ListOrders returns all mirrored orders with the aggregate total
func (h *OrderHandler) ListOrders(c *gin.Context) {
	listing, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := OrderListResponse{
		Orders:     make([]OrderResponse, 0, len(listing.Orders)),
		Count:      listing.Count,
		TotalPrice: listing.TotalPrice,
	}
	for i := range listing.Orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&listing.Orders[i]))
	}

	h.Success(c, resp)
}

// GetOrder returns a single mirrored order by its external id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		h.BadRequest(c, "order_id is required")
		return
	}

	record, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(record))
}

// UpdateTags applies tag deltas to an order, remote store first. Rejections
// from the platform come back as a 422 with the field/message pairs verbatim.
func (h *OrderHandler) UpdateTags(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		h.BadRequest(c, "order_id is required")
		return
	}

	var req UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if len(req.Adds) == 0 && len(req.Removes) == 0 {
		h.BadRequest(c, "At least one of adds or removes is required")
		return
	}

	result, err := h.service.UpdateTags(c.Request.Context(), orderID, req.Adds, req.Removes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if len(result.UserErrors) > 0 {
		details := make([]dto.ValidationDetail, 0, len(result.UserErrors))
		for _, ue := range result.UserErrors {
			details = append(details, dto.ValidationDetail{
				Field:   strings.Join(ue.Field, "."),
				Message: ue.Message,
			})
		}
		requestID := getRequestID(c)
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeRemoteRejected), dto.Response{
			Success: false,
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeRemoteRejected,
				Message:   "The platform rejected the tag update",
				RequestID: requestID,
				Details:   details,
			},
		})
		return
	}

	h.Success(c, toOrderResponse(result.Order))
}
