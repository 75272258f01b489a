package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de actividad de inventario.
const (
	ActivitySale        = "sale"
	ActivityStockIn     = "stock_in"
	ActivityStockOut    = "stock_out"
	ActivityLowStock    = "low_stock"
	ActivityPriceChange = "price_change"
	ActivityRefund      = "refund"
)

// ActivityTypes lista fija de tipos, en el orden en que se reportan.
var ActivityTypes = []string{
	ActivitySale, ActivityStockIn, ActivityStockOut, ActivityLowStock, ActivityPriceChange, ActivityRefund,
}

// ValidActivityType indica si t pertenece al conjunto fijo de tipos.
func ValidActivityType(t string) bool {
	for _, v := range ActivityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Activity registro de auditoría append-only de un evento de inventario o venta.
//
// Quantity son unidades (siempre >= 0). StockChange es la variación de stock aplicada
// (venta -n, devolución con reposición +n). Amount lleva signo: venta +, devolución -.
type Activity struct {
	ID          string
	ProductID   string
	ProductName string // solo lectura (join con products)
	UserID      string
	OrderID     string // vacío si no viene de una orden
	Type        string
	Quantity    int
	StockChange int
	Amount      decimal.Decimal
	Note        string
	CreatedAt   time.Time
}
