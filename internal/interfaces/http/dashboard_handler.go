package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Supermercado-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen de ventas del día y del mes en curso.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (ventas y margen de hoy y del mes, devoluciones,
// top 5 productos, productos bajo umbral, date_label).
// No requiere parámetros; las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), SessionFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
