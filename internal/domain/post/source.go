// internal/domain/post/source.go

package post

import (
	"context"
	"errors"
)

// ErrSourceUnavailable marks a provider that is unreachable or unauthenticated.
// Adapters wrap it so callers can switch to sample data with errors.Is.
var ErrSourceUnavailable = errors.New("post source unavailable")

// Source defines a provider of raw post records
type Source interface {
	// Name returns the source name used in logs and status output
	Name() string

	// Available reports whether the source was configured with usable credentials
	Available() bool

	// Fetch returns up to limit raw records in provider order
	Fetch(ctx context.Context, limit int) ([]RawRecord, error)
}

// NewsSource defines a provider of environmental news articles
type NewsSource interface {
	Available() bool
	FetchNews(ctx context.Context, limit int) ([]NewsArticle, error)
}
