package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/textnorm"
)

var _ repository.ActivityRepository = (*ActivityRepository)(nil)

// ActivityRepository implementación en memoria del registro append-only.
type ActivityRepository struct {
	s    *Store
	inTx bool
}

// NewActivityRepository crea el repositorio fuera de transacción.
func NewActivityRepository(s *Store) *ActivityRepository {
	return &ActivityRepository{s: s}
}

func (r *ActivityRepository) Create(_ context.Context, a *entity.Activity) error {
	return r.s.view(r.inTx, "activity.create", func(st *state) error {
		cp := *a
		cp.ProductName = ""
		st.activities = append(st.activities, &cp)
		return nil
	})
}

func (r *ActivityRepository) List(_ context.Context, f repository.ActivityFilter) ([]*entity.Activity, int, error) {
	var (
		out   []*entity.Activity
		total int
	)
	err := r.s.view(r.inTx, "activity.list", func(st *state) error {
		var all []*entity.Activity
		for i := len(st.activities) - 1; i >= 0; i-- {
			a := st.activities[i]
			if f.ProductID != "" && a.ProductID != f.ProductID {
				continue
			}
			if f.Type != "" && a.Type != f.Type {
				continue
			}
			cp := *a
			if p, ok := st.products[a.ProductID]; ok {
				cp.ProductName = p.Name
			}
			if f.Search != "" && !textnorm.Contains(cp.Note, f.Search) && !textnorm.Contains(cp.ProductName, f.Search) {
				continue
			}
			all = append(all, &cp)
		}
		// Más recientes primero; a igual fecha, el último insertado primero.
		sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *ActivityRepository) Stats(_ context.Context, todayStart time.Time) (*repository.ActivityStats, error) {
	stats := &repository.ActivityStats{ByType: map[string]int{}}
	err := r.s.view(r.inTx, "activity.stats", func(st *state) error {
		for _, a := range st.activities {
			stats.Total++
			if !a.CreatedAt.Before(todayStart) {
				stats.Today++
			}
			stats.ByType[a.Type]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
