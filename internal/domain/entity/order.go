package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden. completed → refunded es la única transición.
const (
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"
)

// Medios de pago aceptados en caja.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentOnline = "online"
)

// ValidPaymentMethod indica si m es un medio de pago aceptado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// Order venta registrada en caja. Es dueña de sus líneas.
type Order struct {
	ID            string
	RequestID     string // clave de idempotencia del cliente, vacío si no se envió
	Items         []OrderItem
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Status        string
	CashierID     string
	RefundReason  string
	RefundedAt    *time.Time
	RefundedBy    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem línea de una orden.
type OrderItem struct {
	ProductID   string
	ProductName string // nombre al momento de la venta
	Quantity    int
	Subtotal    decimal.Decimal
}

// ItemsTotal suma los subtotales de las líneas.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// CanRefund indica si la orden admite devolución.
func (o *Order) CanRefund() bool {
	return o.Status == OrderStatusCompleted
}
