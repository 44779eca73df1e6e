// Package storage es el shim de persistencia clave-valor del cliente:
// serializa valores a JSON bajo claves con nombre, sobre dos backends
// físicos intercambiables (archivos JSON o sqlite embebido).
package storage

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrNotFound indica que la clave no existe. Remove nunca lo devuelve
	// (borrar una clave ausente es idempotente).
	ErrNotFound = errors.New("key not found")

	ErrInvalidKey = errors.New("invalid key")
)

// Claves bajo las que el cliente guarda sus colecciones.
const (
	KeyMedications = "medications"
	KeyHistory     = "medication_history"
	KeySession     = "session"
	KeySettings    = "settings"
)

// Store es el contrato del shim. Toda operación de escritura debe
// considerarse durable recién cuando retorna sin error; los errores de
// serialización o I/O siempre se propagan, nunca se tragan.
type Store interface {
	Save(ctx context.Context, key string, value any) error
	Load(ctx context.Context, key string, out any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

var keyRx = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validKey(key string) error {
	if !keyRx.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}
