// Package engine wires the game's entities onto the single-writer host.
//
// It owns two entity kinds: matches, each wrapping a session state machine
// plus the pair of player IDs bound to it, and players, each wrapping a
// public profile projection. Every operation routes through the host so an
// entity only ever runs one call at a time, and every mutation goes through
// the persistence wrapper with an explicitly chosen write mode: category
// assignment, turn transitions and match conclusion persist immediately,
// word submissions persist lazily and ride the periodic flush.
//
// The engine also applies rating deltas at match end: the winner's gain is
// mirrored onto the loser, floored at zero. Expired matches are concluded by
// the periodic sweep the same way finished ones are.
package engine
