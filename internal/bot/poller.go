package bot

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/adelgado/salebot/internal/announce"
	"github.com/adelgado/salebot/internal/domain"
	"github.com/adelgado/salebot/internal/ports"
)

// Config contiene la configuración del poller.
type Config struct {
	Contract     string
	FetchLimit   int
	PollInterval time.Duration
	Cooldown     time.Duration // espera reducida tras un ciclo que publicó
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		FetchLimit:   100,
		PollInterval: 5 * time.Minute,
		Cooldown:     2 * time.Minute,
	}
}

// Poller es el orquestador del loop: fetch → filtrar vistas → componer →
// publicar → marcar vista. Un solo worker secuencial; el sleep entre ciclos
// es el único punto de suspensión y respeta la cancelación del contexto.
type Poller struct {
	cfg      Config
	sales    ports.SaleProvider
	store    ports.DedupStore
	prices   ports.PriceSource
	composer *announce.Composer
	pub      ports.Publisher

	seeded   bool
	baseline time.Time // marca de agua del primer arranque; nunca avanza
}

// New crea un Poller con todas las dependencias inyectadas.
// prices puede ser nil — entonces el monto fiat solo aparece cuando la API
// de ventas lo reporta.
func New(
	cfg Config,
	sales ports.SaleProvider,
	store ports.DedupStore,
	prices ports.PriceSource,
	composer *announce.Composer,
	pub ports.Publisher,
) *Poller {
	return &Poller{
		cfg:      cfg,
		sales:    sales,
		store:    store,
		prices:   prices,
		composer: composer,
		pub:      pub,
	}
}

// Run ejecuta el loop hasta que el contexto se cancele. Solo un fallo de
// persistencia termina el loop con error — cualquier otro fallo se loggea
// y se reintenta en el próximo ciclo.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("poller starting",
		"contract", p.cfg.Contract,
		"interval", p.cfg.PollInterval,
		"cooldown", p.cfg.Cooldown,
	)

	for {
		published, err := p.RunCycle(ctx)
		if err != nil {
			if domain.IsStoreError(err) {
				slog.Error("dedup store failure, terminating", "err", err)
				return err
			}
			slog.Error("poll cycle failed", "err", err)
		}

		wait := p.cfg.PollInterval
		if published > 0 {
			wait = p.cfg.Cooldown
		}

		select {
		case <-ctx.Done():
			slog.Info("poller stopped")
			return nil
		case <-time.After(wait):
		}
	}
}

// RunCycle ejecuta exactamente un ciclo y devuelve cuántas ventas publicó.
// Errores de la API de ventas abortan el ciclo entero (se reintenta en el
// próximo); errores de persistencia se propagan como fatales.
func (p *Poller) RunCycle(ctx context.Context) (int, error) {
	start := time.Now()

	if !p.seeded {
		if err := p.seedBaseline(ctx); err != nil {
			return 0, err
		}
	}

	sales, err := p.sales.FetchSales(ctx, p.cfg.Contract, p.cfg.FetchLimit)
	if err != nil {
		return 0, err
	}

	pending, err := p.filterUnseen(ctx, sales)
	if err != nil {
		return 0, err
	}

	// Anunciar en orden cronológico aunque la API devuelva newest-first.
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Timestamp.Before(pending[j].Timestamp)
	})

	published := 0
	for _, sale := range pending {
		ok, err := p.announceSale(ctx, sale)
		if err != nil {
			return published, err
		}
		if ok {
			published++
		}
	}

	slog.Info("poll cycle complete",
		"fetched", len(sales),
		"new", len(pending),
		"published", published,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return published, nil
}

// RunLatest es el modo diagnóstico: procesa la venta más reciente de forma
// síncrona, sin leer ni escribir el dedup store, y termina. Útil para probar
// formato y publicación sin esperar una venta real.
func (p *Poller) RunLatest(ctx context.Context) error {
	sales, err := p.sales.FetchSales(ctx, p.cfg.Contract, 1)
	if err != nil {
		return err
	}
	if len(sales) == 0 {
		slog.Info("no sales found for contract", "contract", p.cfg.Contract)
		return nil
	}

	sale := sales[0]
	ann := p.composer.Compose(ctx, sale, announce.FormatPrice(sale.PriceNative, p.usdAmount(ctx, sale)))

	receipt, err := p.pub.Publish(ctx, ann)
	if err != nil {
		return err
	}

	slog.Info("latest sale published",
		"sale_id", sale.SaleID, "token_id", sale.TokenID, "post_id", receipt.PostID)
	return nil
}

// seedBaseline siembra el dedup store en el primer arranque: marca la venta
// más reciente como vista sin publicarla y registra su timestamp. La
// historia previa al bot nunca se anuncia — un bot recién activado no debe
// inundar el feed con ventas viejas.
func (p *Poller) seedBaseline(ctx context.Context) error {
	count, err := p.store.Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		baseline, err := p.store.Baseline(ctx)
		if err != nil {
			return err
		}
		p.baseline = baseline
		p.seeded = true
		return nil
	}

	sales, err := p.sales.FetchSales(ctx, p.cfg.Contract, 1)
	if err != nil {
		return err
	}

	if len(sales) == 0 {
		// Colección sin ventas todavía: no hay historia que suprimir.
		p.seeded = true
		slog.Info("seeded empty baseline — no sales yet")
		return nil
	}

	newest := sales[0]
	if err := p.store.MarkSeen(ctx, newest.SaleID, newest.TokenID); err != nil {
		return err
	}
	if err := p.store.SetBaseline(ctx, newest.Timestamp); err != nil {
		return err
	}

	p.baseline = newest.Timestamp
	p.seeded = true
	slog.Info("seeded baseline from newest sale",
		"sale_id", newest.SaleID,
		"token_id", newest.TokenID,
		"timestamp", newest.Timestamp,
	)
	return nil
}

// filterUnseen descarta ventas ya anunciadas y ventas anteriores a la
// baseline (historia previa al primer arranque que la ventana de fetch
// todavía incluye).
func (p *Poller) filterUnseen(ctx context.Context, sales []domain.SaleEvent) ([]domain.SaleEvent, error) {
	var pending []domain.SaleEvent
	for _, sale := range sales {
		if !p.baseline.IsZero() && !sale.Timestamp.IsZero() && sale.Timestamp.Before(p.baseline) {
			continue
		}
		seen, err := p.store.IsSeen(ctx, sale.SaleID)
		if err != nil {
			return nil, err
		}
		if !seen {
			pending = append(pending, sale)
		}
	}
	return pending, nil
}

// announceSale procesa una venta: precio → composición → publicación →
// marca. MarkSeen solo ocurre tras un publish exitoso (at-least-once), con
// una excepción: un fallo no-retryable marca la venta igualmente para no
// reintentar para siempre algo inarreglable.
func (p *Poller) announceSale(ctx context.Context, sale domain.SaleEvent) (bool, error) {
	priceLine := announce.FormatPrice(sale.PriceNative, p.usdAmount(ctx, sale))
	ann := p.composer.Compose(ctx, sale, priceLine)

	receipt, err := p.pub.Publish(ctx, ann)
	if err != nil {
		if domain.IsRetryablePublish(err) {
			slog.Warn("publish failed, sale stays pending for next cycle",
				"sale_id", sale.SaleID, "stage", "publish", "err", err)
			return false, nil
		}
		slog.Error("publish failed permanently, marking sale seen",
			"sale_id", sale.SaleID, "stage", "publish", "err", err)
		if err := p.store.MarkSeen(ctx, sale.SaleID, sale.TokenID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := p.store.MarkSeen(ctx, sale.SaleID, sale.TokenID); err != nil {
		return false, err
	}

	slog.Info("sale announced",
		"sale_id", sale.SaleID,
		"token_id", sale.TokenID,
		"post_id", receipt.PostID,
	)
	return true, nil
}

// usdAmount devuelve el monto fiat de la venta: el reportado por la API si
// existe, o el derivado del precio spot. Si no hay precio disponible devuelve
// nil y el corchete fiat se omite.
func (p *Poller) usdAmount(ctx context.Context, sale domain.SaleEvent) *float64 {
	if sale.PriceUSD != nil {
		return sale.PriceUSD
	}
	if p.prices == nil {
		return nil
	}

	spot, err := p.prices.NativeUSD(ctx)
	if err != nil {
		slog.Warn("spot price unavailable, omitting fiat amount",
			"sale_id", sale.SaleID, "err", err)
		return nil
	}

	usd := sale.PriceNative * spot
	return &usd
}
