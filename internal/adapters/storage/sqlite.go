package storage

// sqlite.go — dedup store persistente sobre SQLite.
//
// Estrategia:
//   - `seen_sales`: una fila por venta anunciada; INSERT OR IGNORE hace que
//     MarkSeen sea idempotente y cada marca sea una transacción atómica —
//     un crash entre publish y persist nunca deja el archivo corrupto.
//   - `meta`: la baseline del primer arranque (timestamp de la venta más
//     reciente vista al sembrar) para que la historia previa al bot no se
//     anuncie aunque la ventana de fetch la incluya.
//   - Cache en memoria de los ids vistos, precargada al abrir: IsSeen es el
//     hot path del loop y no debe tocar disco en cada ciclo.

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adelgado/salebot/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_sales (
    sale_id   TEXT PRIMARY KEY,
    token_id  TEXT,
    marked_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_seen_marked ON seen_sales(marked_at DESC);
`

const baselineKey = "baseline"

// SQLiteStore implementa ports.DedupStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db    *sql.DB
	cache map[string]struct{} // sale_ids vistos
	mu    sync.Mutex
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada, aplica el
// schema y precarga la cache de ids vistos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.StoreError{Op: fmt.Sprintf("open %q", path), Err: err}
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &domain.StoreError{Op: "apply schema", Err: err}
	}

	s := &SQLiteStore{
		db:    db,
		cache: make(map[string]struct{}),
	}
	if err := s.warmCache(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// IsSeen devuelve true si el sale_id ya fue anunciado. Responde desde la
// cache — la DB solo se toca en MarkSeen.
func (s *SQLiteStore) IsSeen(_ context.Context, saleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[saleID]
	return ok, nil
}

// MarkSeen registra el sale_id. Idempotente: un id ya presente es no-op.
// La fila se commitea antes de volver — crash-safe por venta.
func (s *SQLiteStore) MarkSeen(ctx context.Context, saleID, tokenID string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_sales (sale_id, token_id, marked_at) VALUES (?, ?, ?)`,
		saleID, tokenID, time.Now().UTC(),
	); err != nil {
		return &domain.StoreError{Op: "mark seen " + saleID, Err: err}
	}

	s.mu.Lock()
	s.cache[saleID] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Count devuelve cuántas ventas hay en el conjunto.
func (s *SQLiteStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache), nil
}

// Baseline devuelve el timestamp sembrado en el primer arranque, o zero time
// si el store nunca se sembró.
func (s *SQLiteStore) Baseline(ctx context.Context) (time.Time, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, baselineKey,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, &domain.StoreError{Op: "read baseline", Err: err}
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, &domain.StoreError{Op: "parse baseline", Err: err}
	}
	return t, nil
}

// SetBaseline guarda la baseline.
func (s *SQLiteStore) SetBaseline(ctx context.Context, t time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		baselineKey, t.UTC().Format(time.RFC3339),
	); err != nil {
		return &domain.StoreError{Op: "set baseline", Err: err}
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// warmCache precarga los ids vistos desde la DB al arrancar.
func (s *SQLiteStore) warmCache(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT sale_id FROM seen_sales`)
	if err != nil {
		return &domain.StoreError{Op: "warm cache", Err: err}
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return &domain.StoreError{Op: "warm cache scan", Err: err}
		}
		s.cache[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return &domain.StoreError{Op: "warm cache rows", Err: err}
	}
	return nil
}
