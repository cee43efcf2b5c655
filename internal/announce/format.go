package announce

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatPrice renderiza el precio de una venta para el announcement.
//
// El monto nativo se redondea a 4 decimales fijos — las fuentes devuelven
// floats con colas ruidosas ("1.23456000000001") que no aportan nada en un
// tweet. El monto fiat va entre corchetes con 2 decimales y separador de
// miles; si usd es nil el corchete se omite por completo.
//
//	FormatPrice(1.23456, &usd) → "1.2346 Ξ [$2,345.68]"
//	FormatPrice(0.5, nil)      → "0.5000 Ξ"
func FormatPrice(native float64, usd *float64) string {
	s := fmt.Sprintf("%.4f Ξ", native)
	if usd != nil {
		s += fmt.Sprintf(" [$%s]", humanize.FormatFloat("#,###.##", *usd))
	}
	return s
}
