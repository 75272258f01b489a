package inventory

import (
	"strings"

	"github.com/jhoicas/Supermercado-api/pkg/textnorm"
)

// Palabras que marcan mercancía no vendible (se comparan ya normalizadas).
var unsellableKeywords = []string{
	"damaged", "expired", "defective", "spoiled", "unsellable", "broken",
	"danado", "vencido", "defectuoso", "caducado", "roto", "podrido",
}

// RestockOnRefund decide si una devolución repone stock.
// explicit tiene prioridad; si no, un motivo de mercancía no vendible impide reponer;
// en cualquier otro caso se usa def.
func RestockOnRefund(reason string, explicit *bool, def bool) bool {
	if explicit != nil {
		return *explicit
	}
	if IsUnsellableReason(reason) {
		return false
	}
	return def
}

// IsUnsellableReason indica si el motivo describe mercancía dañada o vencida.
func IsUnsellableReason(reason string) bool {
	folded := textnorm.Fold(reason)
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		for _, k := range unsellableKeywords {
			if w == k {
				return true
			}
		}
	}
	return false
}
