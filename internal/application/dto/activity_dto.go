package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivityQuery filtros de GET /api/activities.
type ActivityQuery struct {
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	Search    string `query:"search"`
	PageRequest
}

// ActivityResponse salida de un registro de actividad.
type ActivityResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	UserID      string          `json:"user_id"`
	OrderID     string          `json:"order_id,omitempty"`
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity"`
	StockChange int             `json:"stock_change"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ActivityListResponse lista paginada de actividad.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ActivityStatsResponse conteos de GET /api/activities/stats.
type ActivityStatsResponse struct {
	Total  int            `json:"total"`
	Today  int            `json:"today"`
	ByType map[string]int `json:"by_type"`
}
