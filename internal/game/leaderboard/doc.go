// Package leaderboard resolves ranked player entries into public profile
// projections through a TTL cache.
//
// Only entries ranked near the top of the board are worth caching: the page
// everyone looks at is the first one. Entries inside a window of 1.5 times
// the configured page size go through the cache; entries beyond it are always
// fetched live and never populate the cache. The viewer's own entry is left
// unresolved so the caller can show their live profile instead of a possibly
// stale projection.
package leaderboard
