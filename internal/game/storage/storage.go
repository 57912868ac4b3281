// Package storage defines the durable entity-state contract the engine
// persists through.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested entity state record is missing.
var ErrNotFound = errors.New("entity state not found")

// EntityStateStore persists one opaque state payload per (kind, id) entity.
// The engine treats payloads as the sole durable representation of an entity;
// stores must write them atomically.
type EntityStateStore interface {
	// Write replaces the entity's durable state.
	Write(ctx context.Context, kind, id string, payload []byte) error
	// Read returns the entity's durable state, or ErrNotFound.
	Read(ctx context.Context, kind, id string) ([]byte, error)
	// Clear removes the entity's durable state. Clearing an absent record
	// is not an error.
	Clear(ctx context.Context, kind, id string) error
}
