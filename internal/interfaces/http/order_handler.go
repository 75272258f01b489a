package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
	"github.com/jhoicas/Supermercado-api/internal/application/dto"
)

// HeaderIdempotencyKey header alternativo a request_id en el body.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandler caja: ventas, devoluciones, consulta y comprobantes.
type OrderHandler struct {
	create *checkout.CreateOrderUseCase
	refund *checkout.RefundUseCase
	query  *checkout.OrderQueryUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(create *checkout.CreateOrderUseCase, refund *checkout.RefundUseCase, query *checkout.OrderQueryUseCase) *OrderHandler {
	return &OrderHandler{create: create, refund: refund, query: query}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock y registra una actividad sale por producto, todo en una transacción.
// @Description  La clave de idempotencia va en el header Idempotency-Key o en request_id.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de idempotencia"
// @Param        body             body    dto.CreateOrderRequest  true   "Carrito"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "PRODUCT_UNAVAILABLE, INSUFFICIENT_STOCK o DUPLICATE_REQUEST"
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if key := strings.TrimSpace(c.Get(HeaderIdempotencyKey)); key != "" {
		if in.RequestID != "" && in.RequestID != key {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Field: "request_id", Message: "no coincide con el header Idempotency-Key",
			})
		}
		in.RequestID = key
	}
	out, err := h.create.CreateOrder(c.UserContext(), SessionFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Refund godoc
// @Summary      Devolver una venta
// @Description  Solo órdenes completed. restock omitido: se repone salvo que el motivo indique mercancía dañada o vencida.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la orden"
// @Param        body  body  dto.RefundRequest  true  "Motivo"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_STATE_TRANSITION"
// @Router       /api/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *fiber.Ctx) error {
	var in dto.RefundRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.refund.Refund(c.UserContext(), SessionFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetOrder(c.UserContext(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status          query  string  false  "completed | refunded"
// @Param        payment_method  query  string  false  "cash | card | online"
// @Param        from            query  string  false  "YYYY-MM-DD (incluido)"
// @Param        to              query  string  false  "YYYY-MM-DD (incluido)"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var q dto.OrderListQuery
	if err := c.QueryParser(&q); err != nil {
		return badQuery(c)
	}
	out, err := h.query.ListOrders(c.UserContext(), SessionFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.query.Receipt(c.UserContext(), SessionFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="orden-`+id+`.pdf"`)
	return c.Send(pdf)
}
