package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
)

// Line línea de carrito ya validada.
type Line struct {
	ProductID string
	Quantity  int
	Subtotal  decimal.Decimal
}

// MergeLines agrupa las líneas por producto (sumando cantidades y subtotales)
// y las devuelve ordenadas por ProductID. Ese orden es también el de bloqueo de filas.
func MergeLines(lines []Line) []Line {
	byID := make(map[string]*Line, len(lines))
	for _, l := range lines {
		if acc, ok := byID[l.ProductID]; ok {
			acc.Quantity += l.Quantity
			acc.Subtotal = acc.Subtotal.Add(l.Subtotal)
			continue
		}
		cp := l
		byID[l.ProductID] = &cp
	}
	out := make([]Line, 0, len(byID))
	for _, l := range byID {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// ProductIDs devuelve los IDs de las líneas en el mismo orden.
func ProductIDs(lines []Line) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	return ids
}

// CheckAvailability valida todas las líneas contra los productos bloqueados antes de escribir nada.
//
// Primero reporta los productos inexistentes, inactivos o sin stock (ProductUnavailableError);
// después la primera línea que pide más de lo disponible (InsufficientStockError).
func CheckAvailability(products []*entity.Product, lines []Line) error {
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	var unavailable []string
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.Active || p.CurrentStock <= 0 {
			unavailable = append(unavailable, l.ProductID)
		}
	}
	if len(unavailable) > 0 {
		return &domain.ProductUnavailableError{ProductIDs: unavailable}
	}
	for _, l := range lines {
		p := byID[l.ProductID]
		if l.Quantity > p.CurrentStock {
			return &domain.InsufficientStockError{ProductID: p.ID, Requested: l.Quantity, Available: p.CurrentStock}
		}
	}
	return nil
}

// CrossesLowStock indica si el stock pasó de estar por encima del umbral a estar en o por debajo.
func CrossesLowStock(before, after, threshold int) bool {
	return before > threshold && after <= threshold
}

// SuggestedReorder cantidad sugerida para volver a 1.5 × umbral.
func SuggestedReorder(currentStock, threshold int) int {
	ideal := (threshold*3 + 1) / 2
	if s := ideal - currentStock; s > 0 {
		return s
	}
	return 0
}
