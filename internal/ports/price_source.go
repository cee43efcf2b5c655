package ports

import "context"

// PriceSource obtiene el precio spot de la moneda nativa en USD.
// Se usa solo cuando la API de ventas no reporta el monto en fiat.
type PriceSource interface {
	// NativeUSD devuelve el precio ETH/USD actual.
	NativeUSD(ctx context.Context) (float64, error)
}
