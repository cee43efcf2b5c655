package ports

import (
	"context"
	"time"
)

// DedupStore persiste el conjunto de sale_ids ya anunciados. Sobrevive
// reinicios del proceso. Todos los fallos devuelven *domain.StoreError —
// el orquestador los trata como fatales.
type DedupStore interface {
	// IsSeen devuelve true si el sale_id ya fue anunciado.
	IsSeen(ctx context.Context, saleID string) (bool, error)

	// MarkSeen registra un sale_id como anunciado. Idempotente: marcar un
	// id ya presente es un no-op.
	MarkSeen(ctx context.Context, saleID, tokenID string) error

	// Count devuelve el tamaño del conjunto. Cero en el primer arranque.
	Count(ctx context.Context) (int, error)

	// Baseline devuelve el timestamp de la venta más reciente vista en el
	// arranque inicial (zero time si nunca se sembró). Las ventas anteriores
	// a la baseline son historia previa al bot y no se anuncian.
	Baseline(ctx context.Context) (time.Time, error)

	// SetBaseline registra la baseline. Se escribe una sola vez, al sembrar
	// el primer arranque — avanzarla después podría descartar en silencio
	// una venta cuyo publish falló mientras otra más nueva sí salía.
	SetBaseline(ctx context.Context, t time.Time) error

	// Close cierra el store limpiamente.
	Close() error
}
