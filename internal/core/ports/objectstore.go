package ports

import (
	"context"
	"io"
)

// ObjectStore abstracts the remote object storage used as build cache and as
// the publication target for wheels and index trees. Keys are slash-separated
// paths below a bucket; the store is treated as eventually consistent and no
// read-after-write guarantee is assumed.
//
//go:generate mockgen -source=objectstore.go -destination=mocks/mock_objectstore.go -package=mocks
type ObjectStore interface {
	// Exists reports whether an object is present at the given key.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// PutFile uploads the local file at path to the given key.
	PutFile(ctx context.Context, bucket, key, path string) error

	// Get opens the object at the given key for reading. The caller closes
	// the returned reader.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// List returns the keys of all objects under the given prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}
