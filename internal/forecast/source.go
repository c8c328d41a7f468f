package forecast

import "context"

// Source abstracts the upstream forecast feed (e.g. the scraped two-week
// course forecast published as JSON). Implementations own their own retry
// policy; callers treat Fetch as a single attempt.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawDay, error)
}
