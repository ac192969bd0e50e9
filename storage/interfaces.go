package storage

import (
	"context"

	"slibuy-scraper/models"
)

// KV is the key-value backend the local state lives in. Values are opaque
// JSON documents.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ListingWriter is the interface any export sink must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}
