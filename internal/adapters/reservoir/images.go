package reservoir

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/adelgado/salebot/internal/domain"
)

// ImageResolver localiza y descarga la imagen de un token. Primero pregunta
// a Reservoir (/tokens/v6); si no hay imagen intenta la API pública de
// OpenSea. Implementa ports.ImageProvider.
type ImageResolver struct {
	client      *Client
	openseaBase string
}

// NewImageResolver crea un resolver sobre el client dado.
func NewImageResolver(client *Client, openseaBase string) *ImageResolver {
	if openseaBase == "" {
		openseaBase = "https://api.opensea.io"
	}
	return &ImageResolver{client: client, openseaBase: openseaBase}
}

// ResolveImage devuelve la imagen del token descargada en memoria.
func (r *ImageResolver) ResolveImage(ctx context.Context, contract, tokenID string) (domain.Image, error) {
	imageURL, err := r.reservoirImageURL(ctx, contract, tokenID)
	if err != nil || imageURL == "" {
		slog.Debug("reservoir image lookup failed, trying opensea",
			"token_id", tokenID, "err", err)
		imageURL, err = r.openseaImageURL(ctx, contract, tokenID)
		if err != nil {
			return domain.Image{}, fmt.Errorf("images.ResolveImage: token %s: %w", tokenID, err)
		}
	}
	if imageURL == "" {
		return domain.Image{}, fmt.Errorf("images.ResolveImage: token %s: no image url", tokenID)
	}

	data, contentType, err := r.client.download(ctx, imageURL)
	if err != nil {
		return domain.Image{}, fmt.Errorf("images.ResolveImage: token %s: %w", tokenID, err)
	}

	return domain.Image{URL: imageURL, Bytes: data, ContentType: contentType}, nil
}

// reservoirImageURL busca la URL de imagen en /tokens/v6.
func (r *ImageResolver) reservoirImageURL(ctx context.Context, contract, tokenID string) (string, error) {
	u := fmt.Sprintf("%s/tokens/v6?tokens=%s",
		r.client.base, url.QueryEscape(contract+":"+tokenID))

	var resp tokensResponse
	if err := r.client.get(ctx, u, &resp); err != nil {
		return "", err
	}
	if len(resp.Tokens) == 0 {
		return "", nil
	}
	return resp.Tokens[0].Token.Image, nil
}

// openseaImageURL es el fallback contra la API pública de OpenSea.
func (r *ImageResolver) openseaImageURL(ctx context.Context, contract, tokenID string) (string, error) {
	u := fmt.Sprintf("%s/api/v2/chain/base/contract/%s/nfts/%s",
		r.openseaBase, contract, tokenID)

	var resp openseaNFTResponse
	if err := r.client.get(ctx, u, &resp); err != nil {
		return "", err
	}
	return resp.NFT.ImageURL, nil
}
