// Package storage defines the persistence contract shared by every service:
// a durable key-value mapping from (collection, id) to a JSON-serializable
// record. Implementations must return the sentinel errors below so callers
// can distinguish the failure modes with errors.Is.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrExists is returned by Create when the key is already present.
	ErrExists = errors.New("record already exists")
	// ErrNotFound is returned by Read, Update, and Delete when the key is absent.
	ErrNotFound = errors.New("record not found")
	// ErrNoCollection is returned by List when the collection does not exist.
	ErrNoCollection = errors.New("collection not found")
	// ErrEmptyCollection is returned by List when the collection exists but
	// holds zero records.
	ErrEmptyCollection = errors.New("collection is empty")
)

// Store is the persistent record store. Values are marshaled to and from JSON
// at the boundary; Read unmarshals into out, which must be a non-nil pointer.
type Store interface {
	Create(ctx context.Context, collection, id string, value any) error
	Read(ctx context.Context, collection, id string, out any) error
	Update(ctx context.Context, collection, id string, value any) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]string, error)
}

// Collection names used across the service.
const (
	Users  = "users"
	Tokens = "tokens"
	Checks = "checks"
)
