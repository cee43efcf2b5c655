package reservoir

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/adelgado/salebot/internal/domain"
)

// FetchSales obtiene las ventas más recientes del contrato, ordenadas de más
// reciente a más antigua (sortDirection=desc). Implementa ports.SaleProvider.
//
// Si /sales/v6 no devuelve nada intenta /tokens/activity/v5 filtrando
// type=sale — algunos contratos de Base tardan en indexarse en /sales.
func (c *Client) FetchSales(ctx context.Context, contract string, limit int) ([]domain.SaleEvent, error) {
	u := fmt.Sprintf("%s/sales/v6?contract=%s&limit=%d&sortDirection=desc",
		c.base, url.QueryEscape(contract), limit)

	var resp salesResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, &domain.SourceError{Op: "reservoir.FetchSales", Err: err}
	}

	sales := filterContract(mapSales(resp.Sales), contract)
	if len(sales) > 0 {
		slog.Debug("fetched sales", "contract", contract, "count", len(sales))
		return sales, nil
	}

	// Fallback: endpoint de actividad
	u = fmt.Sprintf("%s/tokens/activity/v5?contract=%s&types=sale&limit=%d&sortDirection=desc",
		c.base, url.QueryEscape(contract), limit)

	var actResp activityResponse
	if err := c.get(ctx, u, &actResp); err != nil {
		return nil, &domain.SourceError{Op: "reservoir.FetchSales(activity)", Err: err}
	}

	sales = filterContract(mapActivities(actResp.Activities), contract)
	slog.Debug("fetched sales via activity fallback",
		"contract", contract, "count", len(sales))
	return sales, nil
}

// filterContract descarta ventas de otros contratos. La API no debería
// devolverlas, pero el endpoint de fills a veces mezcla resultados.
func filterContract(sales []domain.SaleEvent, contract string) []domain.SaleEvent {
	out := sales[:0]
	for _, s := range sales {
		if s.Contract != "" && !strings.EqualFold(s.Contract, contract) {
			slog.Debug("skipping sale for foreign contract",
				"sale_id", s.SaleID, "contract", s.Contract)
			continue
		}
		out = append(out, s)
	}
	return out
}
