// Package kvstore stores one JSON document per fixed key. The application keeps
// each state container (workspaces, settings, projects, subscription, vault) as a
// whole document and rewrites it on every structural mutation, last write wins.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// Backend persists documents by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
