package ports

import (
	"context"

	"github.com/adelgado/salebot/internal/domain"
)

// ImageProvider resuelve y descarga la imagen de un token.
type ImageProvider interface {
	// ResolveImage localiza la imagen del token y la descarga. Un fallo aquí
	// no es fatal para el announcement: el composer degrada a solo-texto.
	ResolveImage(ctx context.Context, contract, tokenID string) (domain.Image, error)
}
