package domain

import "time"

// SaleKind distingue una venta directa de una oferta aceptada.
type SaleKind string

const (
	// SaleKindAsk es una compra normal (el comprador acepta el precio listado).
	SaleKindAsk SaleKind = "ask"
	// SaleKindBid es una oferta aceptada por el vendedor.
	SaleKindBid SaleKind = "bid"
)

// SaleEvent representa una venta completada, ya normalizada desde la API.
// SaleID es estable entre fetches repetidos del mismo evento — es la clave
// de deduplicación.
type SaleEvent struct {
	SaleID         string
	TokenID        string
	TokenName      string // puede estar vacío
	CollectionName string // puede estar vacío
	Contract       string
	Kind           SaleKind
	PriceNative    float64  // en ETH
	PriceUSD       *float64 // nil si la API no lo reporta
	Timestamp      time.Time
	ImageURL       string // puede estar vacío
}

// Image es una imagen resuelta lista para subir al publisher.
type Image struct {
	URL         string
	Bytes       []byte
	ContentType string
}

// Announcement es el contenido compuesto para una venta. Efímero: se
// construye, se publica y se descarta — nunca se persiste.
type Announcement struct {
	ID     string // uuid local, para correlacionar logs
	SaleID string
	Text   string
	Image  *Image // nil → publicar solo texto (degraded success)
}

// PublishReceipt confirma una publicación exitosa.
type PublishReceipt struct {
	PostID   string
	PostedAt time.Time
}

// HasImage devuelve true si el announcement lleva imagen adjunta.
func (a Announcement) HasImage() bool {
	return a.Image != nil && len(a.Image.Bytes) > 0
}
