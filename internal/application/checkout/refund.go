package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/inventory"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
)

// RefundUseCase devuelve una orden completa: completed -> refunded, una actividad refund
// por línea y reposición de stock según la política.
type RefundUseCase struct {
	txRunner       TxRunner
	publisher      ActivityPublisher
	restockDefault bool
	log            *logger.Logger
}

// NewRefundUseCase construye el caso de uso. restockDefault se aplica cuando ni el request
// ni el motivo deciden si se repone stock.
func NewRefundUseCase(txRunner TxRunner, publisher ActivityPublisher, restockDefault bool, log *logger.Logger) *RefundUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RefundUseCase{txRunner: txRunner, publisher: publisher, restockDefault: restockDefault, log: log}
}

// Refund bloquea la orden (SELECT FOR UPDATE) para que la transición ocurra una sola vez.
func (uc *RefundUseCase) Refund(ctx context.Context, sess domain.Session, orderID string, in dto.RefundRequest) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "checkout.Refund")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, activities, restock, err := uc.refund(ctx, sess, orderID, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("refund.restock", restock))

	if uc.publisher != nil {
		uc.publisher.Publish(activities)
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("refunded_by", order.RefundedBy).
		Bool("restock", restock).
		Msg("orden devuelta")

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (uc *RefundUseCase) refund(ctx context.Context, sess domain.Session, orderID string, in dto.RefundRequest) (*entity.Order, []*entity.Activity, bool, error) {
	if err := sess.Require(); err != nil {
		return nil, nil, false, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, nil, false, domain.NewValidationError("reason", "es obligatorio")
	}
	if len(reason) > 500 {
		return nil, nil, false, domain.NewValidationError("reason", "debe tener máximo 500 caracteres")
	}
	restock := inventory.RestockOnRefund(reason, in.Restock, uc.restockDefault)

	var (
		order      *entity.Order
		activities []*entity.Activity
	)
	err := uc.txRunner.RunCheckout(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		activityRepo repository.ActivityRepository,
	) error {
		o, err := orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.InvalidStateTransitionError{OrderID: orderID, To: entity.OrderStatusRefunded}
			}
			return err
		}
		if !o.CanRefund() {
			return &domain.InvalidStateTransitionError{OrderID: orderID, From: o.Status, To: entity.OrderStatusRefunded}
		}

		now := time.Now()
		o.Status = entity.OrderStatusRefunded
		o.RefundReason = reason
		o.RefundedAt = &now
		o.RefundedBy = sess.UserID
		o.UpdatedAt = now
		if err := orderRepo.MarkRefunded(ctx, o); err != nil {
			return err
		}

		// Bloquear productos en el mismo orden ascendente que el checkout.
		var locked map[string]*entity.Product
		if restock {
			ids := make([]string, 0, len(o.Items))
			for _, it := range o.Items {
				ids = append(ids, it.ProductID)
			}
			products, err := productRepo.GetManyForUpdate(ctx, ids)
			if err != nil {
				return err
			}
			locked = make(map[string]*entity.Product, len(products))
			for _, p := range products {
				locked[p.ID] = p
			}
		}

		activities = activities[:0]
		for _, it := range o.Items {
			change := 0
			note := fmt.Sprintf("Devolución %s: %s", shortID(o.ID), reason)
			if restock {
				if _, ok := locked[it.ProductID]; ok {
					if _, err := productRepo.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
						return err
					}
					change = it.Quantity
				} else {
					note += " (producto eliminado, sin reposición)"
				}
			}
			a := &entity.Activity{
				ID:          uuid.New().String(),
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				UserID:      sess.UserID,
				OrderID:     o.ID,
				Type:        entity.ActivityRefund,
				Quantity:    it.Quantity,
				StockChange: change,
				Amount:      it.Subtotal.Neg(),
				Note:        note,
				CreatedAt:   now,
			}
			if err := activityRepo.Create(ctx, a); err != nil {
				return err
			}
			activities = append(activities, a)
		}
		order = o
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("order_id", orderID).Msg("devolución revertida")
		return nil, nil, false, domain.WrapPersistence("checkout.refund", err)
	}
	return order, activities, restock, nil
}
