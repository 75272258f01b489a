package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Supermercado-api/internal/application/activity"
	"github.com/jhoicas/Supermercado-api/internal/application/dto"
)

// ActivityHandler consulta del registro de actividad.
type ActivityHandler struct {
	uc *activity.UseCase
}

// NewActivityHandler construye el handler.
func NewActivityHandler(uc *activity.UseCase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

// List godoc
// @Summary      Registro de actividad
// @Description  Más reciente primero. search no distingue mayúsculas ni tildes (nota y nombre del producto).
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "sale | stock_in | stock_out | low_stock | price_change | refund"
// @Param        search      query  string  false  "Texto libre"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ActivityListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/activities [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	var q dto.ActivityQuery
	if err := c.QueryParser(&q); err != nil {
		return badQuery(c)
	}
	out, err := h.uc.List(c.UserContext(), SessionFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Conteos de actividad
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ActivityStatsResponse
// @Router       /api/activities/stats [get]
func (h *ActivityHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), SessionFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
