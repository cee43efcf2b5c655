package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	coingeckoURL     = "https://api.coingecko.com/api/v3/simple/price?ids=ethereum&vs_currencies=usd"
	cryptocompareURL = "https://min-api.cryptocompare.com/data/price?fsym=ETH&tsyms=USD"

	cacheKey = "eth-usd"
	cacheTTL = 5 * time.Minute
)

// EthUSD obtiene el precio spot ETH/USD con una cadena de APIs de respaldo
// y una cache TTL en memoria — una venta cada pocos minutos no justifica
// golpear CoinGecko en cada announcement. Implementa ports.PriceSource.
type EthUSD struct {
	http  *http.Client
	urls  []string
	cache *ristretto.Cache
}

// NewEthUSD crea la fuente de precios. urls permite inyectar endpoints de
// test; vacío usa CoinGecko y CryptoCompare en ese orden.
func NewEthUSD(urls ...string) (*EthUSD, error) {
	if len(urls) == 0 {
		urls = []string{coingeckoURL, cryptocompareURL}
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 64,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("pricing.NewEthUSD: cache: %w", err)
	}

	return &EthUSD{
		http:  &http.Client{Timeout: 10 * time.Second},
		urls:  urls,
		cache: cache,
	}, nil
}

// NativeUSD devuelve el precio ETH/USD, de cache si sigue fresco.
// Si todas las APIs fallan devuelve error — el caller omite el monto fiat
// en vez de inventar un precio.
func (e *EthUSD) NativeUSD(ctx context.Context) (float64, error) {
	if v, ok := e.cache.Get(cacheKey); ok {
		if price, ok := v.(float64); ok {
			return price, nil
		}
	}

	var lastErr error
	for _, u := range e.urls {
		price, err := e.fetch(ctx, u)
		if err != nil {
			slog.Debug("price api failed, trying next", "url", u, "err", err)
			lastErr = err
			continue
		}
		e.cache.SetWithTTL(cacheKey, price, 1, cacheTTL)
		e.cache.Wait()
		return price, nil
	}

	return 0, fmt.Errorf("pricing.NativeUSD: all price APIs failed: %w", lastErr)
}

// fetch obtiene y decodifica el precio de un endpoint. Maneja los dos
// formatos de respuesta conocidos:
//
//	CoinGecko:     {"ethereum": {"usd": 1825.0}}
//	CryptoCompare: {"USD": 1825.0}
func (e *EthUSD) fetch(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body struct {
		Ethereum *struct {
			USD float64 `json:"usd"`
		} `json:"ethereum"`
		USD *float64 `json:"USD"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}

	switch {
	case body.Ethereum != nil && body.Ethereum.USD > 0:
		return body.Ethereum.USD, nil
	case body.USD != nil && *body.USD > 0:
		return *body.USD, nil
	default:
		return 0, fmt.Errorf("unrecognized price response")
	}
}
