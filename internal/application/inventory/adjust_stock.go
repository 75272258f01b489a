package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/inventory"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
	"github.com/jhoicas/Supermercado-api/pkg/validator"
)

// AdjustStockUseCase registra entradas, salidas y correcciones de conteo de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type AdjustStockUseCase struct {
	txRunner  TxRunner
	publisher ActivityPublisher
	log       *logger.Logger
}

// NewAdjustStockUseCase construye el caso de uso. publisher puede ser nil.
func NewAdjustStockUseCase(txRunner TxRunner, publisher ActivityPublisher, log *logger.Logger) *AdjustStockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{txRunner: txRunner, publisher: publisher, log: log}
}

// AdjustStock aplica el ajuste según tipo:
//   - stock_in: suma Quantity y recalcula el costo promedio ponderado (UnitCost obligatorio).
//   - stock_out: resta Quantity (InsufficientStock si no alcanza).
//   - correction: fija el conteo físico y registra la diferencia como stock_in o stock_out.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, sess domain.Session, in dto.StockAdjustmentRequest) (*dto.StockAdjustmentResponse, error) {
	if err := sess.RequireRole(entity.RoleAdmin, entity.RoleManager); err != nil {
		return nil, err
	}
	if verr := validator.Validate(in); verr != nil {
		return nil, verr
	}
	switch in.Type {
	case dto.AdjustmentStockIn:
		if in.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", "debe ser mayor o igual a 1")
		}
		if in.UnitCost == nil || in.UnitCost.IsNegative() {
			return nil, domain.NewValidationError("unit_cost", "es obligatorio en stock_in y no puede ser negativo")
		}
	case dto.AdjustmentStockOut:
		if in.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", "debe ser mayor o igual a 1")
		}
	}
	note := strings.TrimSpace(in.Note)

	var (
		resp       *dto.StockAdjustmentResponse
		activities []*entity.Activity
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, activityRepo repository.ActivityRepository) error {
		locked, err := productRepo.GetManyForUpdate(ctx, []string{in.ProductID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.ErrNotFound
		}
		p := locked[0]
		now := time.Now()
		newStock := p.CurrentStock
		cost := p.CostPrice
		activities = activities[:0]

		record := func(typ string, qty, change int, amount decimal.Decimal, note string) {
			activities = append(activities, &entity.Activity{
				ID:          uuid.New().String(),
				ProductID:   p.ID,
				ProductName: p.Name,
				UserID:      sess.UserID,
				Type:        typ,
				Quantity:    qty,
				StockChange: change,
				Amount:      amount,
				Note:        note,
				CreatedAt:   now,
			})
		}

		switch in.Type {
		case dto.AdjustmentStockIn:
			unitCost := *in.UnitCost
			cost = inventory.CostCalculator(p.CurrentStock, p.CostPrice, in.Quantity, unitCost)
			if err := productRepo.UpdateCost(ctx, p.ID, cost); err != nil {
				return err
			}
			if newStock, err = productRepo.IncrementStock(ctx, p.ID, in.Quantity); err != nil {
				return err
			}
			record(entity.ActivityStockIn, in.Quantity, in.Quantity,
				unitCost.Mul(decimal.NewFromInt(int64(in.Quantity))).Neg(), noteOr(note, "Entrada de mercancía"))

		case dto.AdjustmentStockOut:
			if newStock, err = decrement(ctx, productRepo, p, in.Quantity); err != nil {
				return err
			}
			record(entity.ActivityStockOut, in.Quantity, -in.Quantity, decimal.Zero, noteOr(note, "Salida de mercancía"))

		case dto.AdjustmentCorrection:
			delta := in.Quantity - p.CurrentStock
			label := noteOr(note, fmt.Sprintf("Corrección de conteo: %d -> %d", p.CurrentStock, in.Quantity))
			switch {
			case delta > 0:
				if newStock, err = productRepo.IncrementStock(ctx, p.ID, delta); err != nil {
					return err
				}
				record(entity.ActivityStockIn, delta, delta, decimal.Zero, label)
			case delta < 0:
				if newStock, err = decrement(ctx, productRepo, p, -delta); err != nil {
					return err
				}
				record(entity.ActivityStockOut, -delta, delta, decimal.Zero, label)
			}
		}

		if inventory.CrossesLowStock(p.CurrentStock, newStock, p.LowStockThreshold) {
			record(entity.ActivityLowStock, newStock, 0, decimal.Zero,
				fmt.Sprintf("Stock bajo: %d unidades (umbral %d)", newStock, p.LowStockThreshold))
		}
		for _, a := range activities {
			if err := activityRepo.Create(ctx, a); err != nil {
				return err
			}
		}

		ids := make([]string, len(activities))
		for i, a := range activities {
			ids[i] = a.ID
		}
		resp = &dto.StockAdjustmentResponse{
			ProductID:     p.ID,
			PreviousStock: p.CurrentStock,
			CurrentStock:  newStock,
			CostPrice:     cost,
			Activities:    ids,
		}
		return nil
	})
	if err != nil {
		return nil, domain.WrapPersistence("inventory.adjust_stock", err)
	}

	if uc.publisher != nil && len(activities) > 0 {
		uc.publisher.Publish(activities)
	}
	uc.log.Info().
		Str("product_id", resp.ProductID).
		Str("type", in.Type).
		Int("previous_stock", resp.PreviousStock).
		Int("current_stock", resp.CurrentStock).
		Msg("ajuste de inventario")
	return resp, nil
}

func decrement(ctx context.Context, productRepo repository.ProductRepository, p *entity.Product, qty int) (int, error) {
	newStock, ok, err := productRepo.DecrementStock(ctx, p.ID, qty)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &domain.InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.CurrentStock}
	}
	return newStock, nil
}

func noteOr(note, def string) string {
	if note != "" {
		return note
	}
	return def
}
