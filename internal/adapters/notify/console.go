package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/adelgado/salebot/internal/domain"
)

// Console implementa ports.Publisher escribiendo a stdout. Se usa en
// dry-run para verificar formato y composición sin tocar la API real.
type Console struct {
	out io.Writer
}

// NewConsole crea un publisher de consola.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un publisher de consola para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Publish imprime el announcement como tabla y devuelve un receipt local.
func (c *Console) Publish(_ context.Context, ann domain.Announcement) (domain.PublishReceipt, error) {
	now := time.Now()

	fmt.Fprintf(c.out, "\n[%s] DRY-RUN publish\n", now.Format("15:04:05"))

	table := tablewriter.NewWriter(c.out)
	table.Header("Field", "Value")
	table.Append("announcement_id", ann.ID)
	table.Append("sale_id", ann.SaleID)
	table.Append("image", describeImage(ann))
	table.Append("text", ann.Text)
	table.Render()

	return domain.PublishReceipt{
		PostID:   "dry-run-" + uuid.NewString(),
		PostedAt: now.UTC(),
	}, nil
}

func describeImage(ann domain.Announcement) string {
	if !ann.HasImage() {
		return "(none — text only)"
	}
	return fmt.Sprintf("%s (%d bytes, %s)",
		ann.Image.URL, len(ann.Image.Bytes), ann.Image.ContentType)
}
