package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo registro append-only sobre la tabla activities.
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

// Create inserta una actividad. ProductName no se persiste (se obtiene con join al listar).
func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO activities (id, product_id, user_id, order_id, type, quantity, stock_change, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.ProductID, a.UserID, nullIfEmpty(a.OrderID), a.Type, a.Quantity, a.StockChange,
		a.Amount, a.Note, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List filtra por producto, tipo y texto libre (nota o nombre de producto, sin tildes).
func (r *ActivityRepo) List(ctx context.Context, f repository.ActivityFilter) ([]*entity.Activity, int, error) {
	const from = `
		FROM activities a
		LEFT JOIN products p ON p.id = a.product_id
		WHERE ($1 = '' OR a.product_id = $1)
		  AND ($2 = '' OR a.type = $2)
		  AND ($3 = '' OR unaccent(lower(a.note || ' ' || COALESCE(p.name, ''))) LIKE $3)`
	args := []any{f.ProductID, f.Type, likePattern(f.Search)}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.product_id, COALESCE(p.name, ''), a.user_id, COALESCE(a.order_id, ''), a.type,
		       a.quantity, a.stock_change, a.amount, a.note, a.created_at`+from+`
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $4 OFFSET $5`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	var list []*entity.Activity
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.ProductID, &a.ProductName, &a.UserID, &a.OrderID, &a.Type,
			&a.Quantity, &a.StockChange, &a.Amount, &a.Note, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Stats total, desde todayStart y por tipo en una sola pasada.
func (r *ActivityRepo) Stats(ctx context.Context, todayStart time.Time) (*repository.ActivityStats, error) {
	rows, err := r.q.Query(ctx, `
		SELECT type, count(*), count(*) FILTER (WHERE created_at >= $1)
		FROM activities GROUP BY type`, todayStart)
	if err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}
	defer rows.Close()
	stats := &repository.ActivityStats{ByType: map[string]int{}}
	for rows.Next() {
		var (
			typ          string
			count, today int
		)
		if err := rows.Scan(&typ, &count, &today); err != nil {
			return nil, fmt.Errorf("scan activity stats: %w", err)
		}
		stats.ByType[typ] = count
		stats.Total += count
		stats.Today += today
	}
	return stats, rows.Err()
}
