// internal/adapter/social/multi.go

package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"ecodash/internal/domain/post"
)

// MultiSource fans a fetch out over several sources and merges the results
// in source order
type MultiSource struct {
	sources []post.Source
}

// NewMultiSource combines sources; unavailable sources are skipped at fetch time
func NewMultiSource(sources ...post.Source) *MultiSource {
	return &MultiSource{sources: sources}
}

// Name joins the names of the available sources
func (m *MultiSource) Name() string {
	names := make([]string, 0, len(m.sources))
	for _, s := range m.active() {
		names = append(names, s.Name())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// Available reports whether at least one source is available
func (m *MultiSource) Available() bool {
	return len(m.active()) > 0
}

// Fetch splits limit evenly across available sources, the first sources
// absorbing the remainder. A source that reports itself unavailable is
// skipped; any other error fails the whole fetch.
func (m *MultiSource) Fetch(ctx context.Context, limit int) ([]post.RawRecord, error) {
	active := m.active()
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no source configured", post.ErrSourceUnavailable)
	}
	if limit <= 0 {
		return []post.RawRecord{}, nil
	}

	share := limit / len(active)
	extra := limit % len(active)

	slots := make([][]post.RawRecord, len(active))
	errs := make([]error, len(active))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range active {
		n := share
		if i < extra {
			n++
		}
		if n == 0 {
			continue
		}
		g.Go(func() error {
			records, err := src.Fetch(gctx, n)
			if err != nil {
				if errors.Is(err, post.ErrSourceUnavailable) {
					errs[i] = err
					return nil
				}
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			slots[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]post.RawRecord, 0, limit)
	unavailable := 0
	for i := range active {
		if errs[i] != nil {
			unavailable++
			continue
		}
		records = append(records, slots[i]...)
	}
	if unavailable == len(active) {
		return nil, fmt.Errorf("%w: %v", post.ErrSourceUnavailable, errors.Join(errs...))
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MultiSource) active() []post.Source {
	active := make([]post.Source, 0, len(m.sources))
	for _, s := range m.sources {
		if s != nil && s.Available() {
			active = append(active, s)
		}
	}
	return active
}
