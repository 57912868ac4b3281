package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/player"
)

// ProfileFetcher fetches a player's current public profile from its backing
// entity.
type ProfileFetcher interface {
	FetchPlayerProfile(ctx context.Context, id string) (player.Profile, error)
}

// ProfileFetcherFunc adapts a function to the ProfileFetcher interface.
type ProfileFetcherFunc func(ctx context.Context, id string) (player.Profile, error)

func (f ProfileFetcherFunc) FetchPlayerProfile(ctx context.Context, id string) (player.Profile, error) {
	return f(ctx, id)
}

// Entry is one row of a ranked leaderboard page. Rank is 1-based.
type Entry struct {
	Rank     uint
	PlayerID string
}

// Resolved pairs an entry with its profile projection. Profile is nil for
// the viewer's own entry, which is deliberately left for a live fetch by the
// caller.
type Resolved struct {
	Entry   Entry
	Profile *player.Profile
}

// Resolver turns ranked entries into profile projections using the cache for
// entries near the top of the board.
type Resolver struct {
	cache   *Cache
	fetcher ProfileFetcher
	topN    uint
}

// NewResolver creates a resolver. topN is the configured page size; entries
// ranked within 1.5 times topN are eligible for caching.
func NewResolver(cache *Cache, fetcher ProfileFetcher, topN uint) *Resolver {
	return &Resolver{cache: cache, fetcher: fetcher, topN: topN}
}

// cacheable reports whether an entry at the given rank sits inside the
// caching window.
func (r *Resolver) cacheable(rank uint) bool {
	return rank*2 <= r.topN*3
}

// ResolvePage resolves each entry to a profile projection. The viewer's own
// entry is skipped. In-window entries consult the cache and populate it on a
// miss; out-of-window entries always fetch live and never populate. A fetch
// failure aborts the page.
func (r *Resolver) ResolvePage(ctx context.Context, viewerID string, entries []Entry, now time.Time) ([]Resolved, error) {
	out := make([]Resolved, 0, len(entries))
	for _, e := range entries {
		if e.PlayerID == viewerID {
			out = append(out, Resolved{Entry: e})
			continue
		}
		if r.cacheable(e.Rank) {
			if profile, ok := r.cache.Get(e.PlayerID, now); ok {
				out = append(out, Resolved{Entry: e, Profile: &profile})
				continue
			}
			profile, err := r.fetcher.FetchPlayerProfile(ctx, e.PlayerID)
			if err != nil {
				return nil, fmt.Errorf("fetch profile %s: %w", e.PlayerID, err)
			}
			r.cache.Put(e.PlayerID, profile, now)
			out = append(out, Resolved{Entry: e, Profile: &profile})
			continue
		}
		profile, err := r.fetcher.FetchPlayerProfile(ctx, e.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("fetch profile %s: %w", e.PlayerID, err)
		}
		out = append(out, Resolved{Entry: e, Profile: &profile})
	}
	return out, nil
}
