package checkout

import (
	"context"
	"time"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/domain/repository"
	"github.com/jhoicas/Supermercado-api/pkg/validator"
)

const dateLayout = "2006-01-02"

// OrderQueryUseCase consultas de órdenes: detalle, historial y comprobante.
type OrderQueryUseCase struct {
	orderRepo repository.OrderRepository
	receipts  ReceiptGenerator
}

// NewOrderQueryUseCase construye el caso de uso. receipts puede ser nil (sin PDF).
func NewOrderQueryUseCase(orderRepo repository.OrderRepository, receipts ReceiptGenerator) *OrderQueryUseCase {
	return &OrderQueryUseCase{orderRepo: orderRepo, receipts: receipts}
}

// GetOrder devuelve una orden por ID.
func (uc *OrderQueryUseCase) GetOrder(ctx context.Context, sess domain.Session, id string) (*dto.OrderResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	o, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("orders.get", err)
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListOrders historial paginado, más recientes primero. From/To son fechas locales inclusivas.
func (uc *OrderQueryUseCase) ListOrders(ctx context.Context, sess domain.Session, q dto.OrderListQuery) (*dto.OrderListResponse, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	q.DefaultPage()
	if verr := validator.Validate(q); verr != nil {
		return nil, verr
	}
	filter := repository.OrderFilter{
		Status:        q.Status,
		PaymentMethod: q.PaymentMethod,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if q.From != "" {
		from, err := time.ParseInLocation(dateLayout, q.From, time.Local)
		if err != nil {
			return nil, domain.NewValidationError("from", "debe tener formato YYYY-MM-DD")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(dateLayout, q.To, time.Local)
		if err != nil {
			return nil, domain.NewValidationError("to", "debe tener formato YYYY-MM-DD")
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}

	orders, total, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.WrapPersistence("orders.list", err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, ToOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Receipt genera el comprobante PDF de la orden.
func (uc *OrderQueryUseCase) Receipt(ctx context.Context, sess domain.Session, id string) ([]byte, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if uc.receipts == nil {
		return nil, domain.ErrNotFound
	}
	o, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("orders.get", err)
	}
	pdf, err := uc.receipts.GenerateReceipt(o)
	if err != nil {
		return nil, domain.WrapPersistence("orders.receipt", err)
	}
	return pdf, nil
}

// ToOrderResponse convierte la entidad a DTO.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}
	return dto.OrderResponse{
		ID:            o.ID,
		RequestID:     o.RequestID,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		CashierID:     o.CashierID,
		RefundReason:  o.RefundReason,
		RefundedAt:    o.RefundedAt,
		RefundedBy:    o.RefundedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
