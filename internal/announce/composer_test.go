package announce_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgado/salebot/internal/announce"
	"github.com/adelgado/salebot/internal/domain"
)

// --- mocks ---

type mockImages struct {
	image domain.Image
	err   error
	calls int
}

func (m *mockImages) ResolveImage(_ context.Context, _, _ string) (domain.Image, error) {
	m.calls++
	return m.image, m.err
}

// --- helpers ---

func makeSale(tokenID string) domain.SaleEvent {
	return domain.SaleEvent{
		SaleID:      "sale-" + tokenID,
		TokenID:     tokenID,
		Contract:    "0xc0ffee",
		Kind:        domain.SaleKindAsk,
		PriceNative: 1.5,
		Timestamp:   time.Now(),
	}
}

// --- tests ---

func TestCompose_TextTemplate(t *testing.T) {
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", nil)

	ann := c.Compose(context.Background(), makeSale("42"), "1.5000 Ξ [$3,000.00]")

	assert.Equal(t, "sale-42", ann.SaleID)
	assert.NotEmpty(t, ann.ID)
	assert.Equal(t,
		"Primitive #42 bought for 1.5000 Ξ [$3,000.00]\n\n⤷https://opensea.io/assets/base/0xc0ffee/42",
		ann.Text)
	assert.False(t, ann.HasImage())
}

func TestCompose_BidUsesOfferVerb(t *testing.T) {
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", nil)

	sale := makeSale("7")
	sale.Kind = domain.SaleKindBid
	ann := c.Compose(context.Background(), sale, "0.2000 Ξ")

	assert.Contains(t, ann.Text, "offer accepted for 0.2000 Ξ")
	assert.NotContains(t, ann.Text, "bought for")
}

func TestCompose_CollectionNameFromSaleWins(t *testing.T) {
	c := announce.NewComposer("Fallback", "https://opensea.io/assets/base", nil)

	sale := makeSale("1")
	sale.CollectionName = "Primitives"
	ann := c.Compose(context.Background(), sale, "0.1000 Ξ")

	assert.Contains(t, ann.Text, "Primitives #1")
}

func TestCompose_WithImage(t *testing.T) {
	images := &mockImages{image: domain.Image{
		URL:         "https://cdn.example/42.png",
		Bytes:       []byte("png-bytes"),
		ContentType: "image/png",
	}}
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", images)

	ann := c.Compose(context.Background(), makeSale("42"), "1.5000 Ξ")

	require.True(t, ann.HasImage())
	assert.Equal(t, "https://cdn.example/42.png", ann.Image.URL)
	assert.Equal(t, 1, images.calls)
}

func TestCompose_ImageFailureDegradesToTextOnly(t *testing.T) {
	// Degraded success: la imagen falla pero el announcement sale igual
	images := &mockImages{err: errors.New("cdn timeout")}
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", images)

	ann := c.Compose(context.Background(), makeSale("42"), "1.5000 Ξ")

	assert.False(t, ann.HasImage())
	assert.NotEmpty(t, ann.Text)
}

func TestCompose_DisplayID_TrimsLeadingZeros(t *testing.T) {
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", nil)

	ann := c.Compose(context.Background(), makeSale("007"), "0.1000 Ξ")

	assert.Contains(t, ann.Text, "Primitive #7 ")
	// el deep link conserva el id original
	assert.Contains(t, ann.Text, "/0xc0ffee/007")
}

func TestCompose_DisplayID_LongIDUsesTokenName(t *testing.T) {
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", nil)

	sale := makeSale("0x9f8e7d6c5b4a39281706f5e4d3c2b1a09f8e7d6c")
	sale.TokenName = "Primitive #123"
	ann := c.Compose(context.Background(), sale, "0.1000 Ξ")

	assert.Contains(t, ann.Text, "Primitive #123 bought for")
}

func TestCompose_DisplayID_LongIDWithoutNameShortens(t *testing.T) {
	c := announce.NewComposer("Primitive", "https://opensea.io/assets/base", nil)

	sale := makeSale("abcdef1234567890")
	ann := c.Compose(context.Background(), sale, "0.1000 Ξ")

	assert.Contains(t, ann.Text, "#abcd…7890")
}
