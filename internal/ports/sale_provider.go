package ports

import (
	"context"

	"github.com/adelgado/salebot/internal/domain"
)

// SaleProvider obtiene las ventas recientes de un contrato desde la API
// del marketplace.
type SaleProvider interface {
	// FetchSales devuelve hasta limit ventas del contrato, ordenadas de más
	// reciente a más antigua. Cero ventas devuelve slice vacío, no error.
	// Fallos de red/HTTP/parseo devuelven *domain.SourceError.
	FetchSales(ctx context.Context, contract string, limit int) ([]domain.SaleEvent, error)
}
