package domain

import (
	"errors"
	"fmt"
)

// Taxonomía de errores del bot:
//   - SourceError: la API de ventas falló → se salta el ciclo.
//   - PublishError: la publicación falló; Retryable decide si la venta queda
//     pendiente para el próximo ciclo o se marca como vista igualmente.
//   - StoreError: el dedup store falló → fatal, el proceso debe terminar
//     (el riesgo de publicar duplicados en silencio es inaceptable).

// SourceError indica que la API de ventas no está disponible o devolvió
// una respuesta que no se pudo interpretar.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// PublishError indica un fallo al publicar un announcement.
type PublishError struct {
	Op         string
	StatusCode int // 0 si fue un error de red
	Retryable  bool
	Err        error
}

func (e *PublishError) Error() string {
	kind := "non-retryable"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("publish failed (%s): %s: %v", kind, e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// StoreError indica un fallo de persistencia del dedup store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("dedup store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsSourceError devuelve true si err (o su cadena) es un SourceError.
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}

// IsRetryablePublish devuelve true solo para PublishError con Retryable=true
// (rate limit, red, 5xx). Un error que no es PublishError no es retryable.
func IsRetryablePublish(err error) bool {
	var pe *PublishError
	return errors.As(err, &pe) && pe.Retryable
}

// IsStoreError devuelve true si err (o su cadena) es un StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
