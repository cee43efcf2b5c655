package reservoir

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/adelgado/salebot/internal/domain"
)

// mapSales convierte los DTOs de /sales/v6 a domain.SaleEvent, descartando
// entradas sin identificador o sin token.
func mapSales(raw []rawSale) []domain.SaleEvent {
	sales := make([]domain.SaleEvent, 0, len(raw))
	for _, r := range raw {
		id := saleIdentifier(r)
		if id == "" || r.Token.TokenID == "" {
			continue
		}
		sales = append(sales, domain.SaleEvent{
			SaleID:         id,
			TokenID:        r.Token.TokenID,
			TokenName:      r.Token.Name,
			CollectionName: r.Token.Collection.Name,
			Contract:       r.Token.Contract,
			Kind:           mapKind(r.OrderSide),
			PriceNative:    derefOrZero(r.Price.Amount.Decimal),
			PriceUSD:       r.Price.Amount.USD,
			Timestamp:      parseTimestamp(r.Timestamp),
			ImageURL:       r.Token.Image,
		})
	}
	return sales
}

// mapActivities convierte los eventos type=sale de /tokens/activity/v5.
func mapActivities(raw []rawActivity) []domain.SaleEvent {
	var sales []domain.SaleEvent
	for _, r := range raw {
		if r.Type != "sale" || r.ID == "" || r.Token.TokenID == "" {
			continue
		}
		sales = append(sales, domain.SaleEvent{
			SaleID:      r.ID,
			TokenID:     r.Token.TokenID,
			TokenName:   r.Token.TokenName,
			Contract:    r.Contract,
			Kind:        domain.SaleKindAsk, // activity no distingue bids
			PriceNative: derefOrZero(r.Price.Amount.Decimal),
			PriceUSD:    r.Price.Amount.USD,
			Timestamp:   parseTimestamp(r.Timestamp),
			ImageURL:    r.Token.TokenImage,
		})
	}
	return sales
}

// saleIdentifier elige la clave de dedup más estable disponible.
// Reservoir garantiza saleId único por venta; id y orderHash son fallbacks.
func saleIdentifier(r rawSale) string {
	switch {
	case r.SaleID != "":
		return r.SaleID
	case r.ID != "":
		return r.ID
	default:
		return r.OrderHash
	}
}

func mapKind(orderSide string) domain.SaleKind {
	if orderSide == "bid" {
		return domain.SaleKindBid
	}
	return domain.SaleKindAsk
}

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// parseTimestamp interpreta el timestamp de la API: unix en segundos o
// milisegundos, o string ISO. Reservoir usa varios formatos según endpoint.
func parseTimestamp(n json.Number) time.Time {
	s := n.String()
	if s == "" {
		return time.Time{}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return time.Unix(sec/1000, (sec%1000)*int64(time.Millisecond))
		}
		return time.Unix(sec, 0)
	}
	for _, layout := range []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
