package ports

import (
	"context"

	"github.com/adelgado/salebot/internal/domain"
)

// Publisher publica un announcement en la plataforma social.
type Publisher interface {
	// Publish crea el post (texto + imagen opcional) y devuelve el receipt.
	// Los fallos devuelven *domain.PublishError con Retryable según la causa.
	// Nunca reintenta por su cuenta: el orquestador decide.
	Publish(ctx context.Context, ann domain.Announcement) (domain.PublishReceipt, error)
}
