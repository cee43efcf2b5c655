package announce

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/adelgado/salebot/internal/domain"
	"github.com/adelgado/salebot/internal/ports"
)

// Composer construye el announcement de una venta: texto con plantilla fija
// y la imagen del token resuelta vía ImageProvider.
type Composer struct {
	collection   string // fallback si la venta no trae nombre de colección
	deepLinkBase string
	images       ports.ImageProvider
}

// NewComposer crea el composer. images puede ser nil — entonces todos los
// announcements salen solo-texto.
func NewComposer(collection, deepLinkBase string, images ports.ImageProvider) *Composer {
	return &Composer{
		collection:   collection,
		deepLinkBase: deepLinkBase,
		images:       images,
	}
}

// Compose construye el announcement. Un fallo al resolver la imagen degrada
// a solo-texto y se loggea — nunca aborta el announcement completo.
func (c *Composer) Compose(ctx context.Context, sale domain.SaleEvent, priceLine string) domain.Announcement {
	ann := domain.Announcement{
		ID:     uuid.NewString(),
		SaleID: sale.SaleID,
		Text:   c.composeText(sale, priceLine),
	}

	if c.images == nil {
		return ann
	}

	img, err := c.images.ResolveImage(ctx, sale.Contract, sale.TokenID)
	if err != nil {
		slog.Warn("image resolution failed, announcing text-only",
			"sale_id", sale.SaleID, "token_id", sale.TokenID, "err", err)
		return ann
	}
	ann.Image = &img

	return ann
}

// composeText interpola la plantilla fija del tweet.
func (c *Composer) composeText(sale domain.SaleEvent, priceLine string) string {
	collection := sale.CollectionName
	if collection == "" {
		collection = c.collection
	}

	verb := "bought for"
	if sale.Kind == domain.SaleKindBid {
		verb = "offer accepted for"
	}

	return fmt.Sprintf("%s #%s %s %s\n\n⤷%s/%s/%s",
		collection, displayID(sale), verb, priceLine,
		c.deepLinkBase, sale.Contract, sale.TokenID)
}

var tokenNumberRe = regexp.MustCompile(`#(\d+)`)

// displayID normaliza el token id para mostrarlo:
//   - ids numéricos pierden ceros a la izquierda
//   - ids muy largos usan el "#N" del nombre del token si existe,
//     o se acortan a "abcd…wxyz"
func displayID(sale domain.SaleEvent) string {
	id := sale.TokenID

	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}

	if len(id) > 10 {
		if m := tokenNumberRe.FindStringSubmatch(sale.TokenName); m != nil {
			return m[1]
		}
		if sale.TokenName != "" {
			return sale.TokenName
		}
		return id[:4] + "…" + id[len(id)-4:]
	}

	return id
}
