package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea del carrito.
type OrderLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Subtotal  decimal.Decimal `json:"subtotal" validate:"gt=0,money"`
}

// CreateOrderRequest body de POST /api/orders.
// RequestID es la clave de idempotencia; el handler la toma también del header Idempotency-Key.
type CreateOrderRequest struct {
	Products      []OrderLineRequest `json:"products" validate:"required,min=1,dive"`
	TotalAmount   decimal.Decimal    `json:"total_amount" validate:"gt=0,money"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=cash card online"`
	RequestID     string             `json:"request_id,omitempty" validate:"omitempty,max=100"`
}

// RefundRequest body de POST /api/orders/:id/refund.
// Restock nil deja la decisión a la política (motivo + valor por defecto).
type RefundRequest struct {
	Reason  string `json:"reason" validate:"required,max=500"`
	Restock *bool  `json:"restock,omitempty"`
}

// OrderItemResponse línea de una orden.
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID            string              `json:"id"`
	RequestID     string              `json:"request_id,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentMethod string              `json:"payment_method"`
	Status        string              `json:"status"`
	CashierID     string              `json:"cashier_id"`
	RefundReason  string              `json:"refund_reason,omitempty"`
	RefundedAt    *time.Time          `json:"refunded_at,omitempty"`
	RefundedBy    string              `json:"refunded_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderListQuery filtros de GET /api/orders. From/To en formato YYYY-MM-DD.
type OrderListQuery struct {
	Status        string `query:"status" validate:"omitempty,oneof=completed refunded"`
	PaymentMethod string `query:"payment_method" validate:"omitempty,oneof=cash card online"`
	From          string `query:"from"`
	To            string `query:"to"`
	PageRequest
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
