package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgado/salebot/internal/adapters/notify"
	"github.com/adelgado/salebot/internal/domain"
)

func TestConsolePublish_PrintsAnnouncement(t *testing.T) {
	var buf bytes.Buffer
	pub := notify.NewConsoleWriter(&buf)

	ann := domain.Announcement{
		ID:     "ann-1",
		SaleID: "sale-1",
		Text:   "Primitive #7 bought for 1.5000 Ξ [$3,000.00]",
	}

	receipt, err := pub.Publish(context.Background(), ann)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "DRY-RUN publish")
	assert.Contains(t, out, "ann-1")
	assert.Contains(t, out, "sale-1")
	assert.Contains(t, out, "Primitive #7 bought for 1.5000 Ξ [$3,000.00]")
	assert.Contains(t, out, "text only")

	assert.True(t, strings.HasPrefix(receipt.PostID, "dry-run-"))
	assert.False(t, receipt.PostedAt.IsZero())
}

func TestConsolePublish_DescribesImage(t *testing.T) {
	var buf bytes.Buffer
	pub := notify.NewConsoleWriter(&buf)

	ann := domain.Announcement{
		ID:     "ann-2",
		SaleID: "sale-2",
		Text:   "with image",
		Image: &domain.Image{
			URL:         "https://cdn.example/7.png",
			Bytes:       []byte("png-bytes"),
			ContentType: "image/png",
		},
	}

	_, err := pub.Publish(context.Background(), ann)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "https://cdn.example/7.png")
	assert.Contains(t, out, "image/png")
	assert.NotContains(t, out, "text only")
}
