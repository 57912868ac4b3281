// Package match implements the round/turn state machine of a two-player
// word duel.
//
// A session holds a fixed number of rounds. Each round is scoped to one
// category and gives each player one timed turn to submit words; submissions
// are spell-corrected against the category, rejected as duplicates when the
// corrected word was already played that round, and scored by a collaborator
// policy. An abandonment deadline covers the whole match: once it passes the
// session is expired no matter whose turn it was.
//
// The state machine is written single-threaded. The hosting runtime
// guarantees one call at a time per session; time enters every operation as
// an argument and expiry is evaluated lazily against it, so the package
// needs no timers, no locks, and no clock of its own.
//
// Ordinary game-flow violations (playing after the turn ended, choosing a
// category out of order, submitting a duplicate) are reported as typed
// results, never as errors. Errors are reserved for collaborator failures
// and contract misuse.
package match
