package s3

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/rocmforge/wheelhouse/internal/core/ports"
)

// NodeID is the unique identifier for the object store Graft node.
const NodeID graft.ID = "adapter.object_store"

func init() {
	graft.Register(graft.Node[ports.ObjectStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ObjectStore, error) {
			return NewStore(ctx)
		},
	})
}
