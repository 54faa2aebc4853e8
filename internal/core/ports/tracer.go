package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks

// Tracer is the entry point for recording pipeline stages.
type Tracer interface {
	// Start begins a new span for a pipeline stage.
	Start(ctx context.Context, name string) (context.Context, Span)

	// Close flushes and closes the recording session.
	Close() error
}

// Span represents one pipeline stage.
type Span interface {
	io.Writer
	// End completes the span, recording err if non-nil.
	End(err error)
	// Cached marks the stage as skipped due to a cache hit.
	Cached()
}
