package match

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
)

// snapshotVersion identifies the persisted snapshot layout. Field order and
// the nullability of the category-name list are part of the durable contract;
// bump the version on any incompatible change and migrate explicitly.
const snapshotVersion = 1

// Snapshot is the complete persisted form of a session. Categories appear by
// name only; they are re-resolved against configuration when the snapshot is
// loaded. All timestamps are UTC Unix milliseconds.
type Snapshot struct {
	Version        int           `json:"version"`
	Rounds         []*string     `json:"rounds"`
	Answers        [2][][]Answer `json:"answers"`
	Scores         [2][]uint16   `json:"scores"`
	TurnEnds       [2]int64      `json:"turn_ends_ms"`
	FirstTurn      Player        `json:"first_turn"`
	ExpiryInterval int64         `json:"expiry_interval_ms"`
	Expiry         *int64        `json:"expiry_ms"`
	CurrentRound   int           `json:"current_round"`
	Played         [2]bool       `json:"played"`
	EverPlayed     [2]bool       `json:"ever_played"`
	Concluded      bool          `json:"concluded"`
}

// Snapshot captures the session's complete persistable state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Version:        snapshotVersion,
		Rounds:         make([]*string, len(s.rounds)),
		Scores:         [2][]uint16{},
		FirstTurn:      s.firstTurn,
		ExpiryInterval: s.expiryInterval.Milliseconds(),
		CurrentRound:   s.currentRound,
		Played:         s.played,
		EverPlayed:     s.everPlayed,
		Concluded:      s.concluded,
	}
	for i, cat := range s.rounds {
		if cat == nil {
			continue
		}
		name := cat.Name()
		snap.Rounds[i] = &name
	}
	for p := range s.answers {
		snap.Answers[p] = make([][]Answer, len(s.answers[p]))
		for round, answers := range s.answers[p] {
			snap.Answers[p][round] = append([]Answer(nil), answers...)
		}
		snap.Scores[p] = append([]uint16(nil), s.scores[p]...)
	}
	for p, deadline := range s.turnEnds {
		if !deadline.IsZero() {
			snap.TurnEnds[p] = deadline.UTC().UnixMilli()
		}
	}
	if s.expiry != nil {
		expiry := s.expiry.UTC().UnixMilli()
		snap.Expiry = &expiry
	}
	return snap
}

// FromSnapshot rebuilds a session from its persisted form, re-resolving
// category names through resolver. A name that no longer resolves leaves its
// round behaviorally unset and is reported in dropped so the caller can log
// the data-migration hazard. A resolver that answers with a category under a
// different name is a contract fault.
func FromSnapshot(snap Snapshot, resolver category.Resolver) (*Session, []string, error) {
	if snap.Version != snapshotVersion {
		return nil, nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if resolver == nil {
		return nil, nil, fmt.Errorf("category resolver is required")
	}

	s := NewSession(len(snap.Rounds), time.Duration(snap.ExpiryInterval)*time.Millisecond)
	var dropped []string
	for i, name := range snap.Rounds {
		if name == nil {
			continue
		}
		cat, ok := resolver.Resolve(*name)
		if !ok {
			dropped = append(dropped, *name)
			continue
		}
		if cat.Name() != *name {
			return nil, nil, fmt.Errorf("resolver returned category %q for name %q", cat.Name(), *name)
		}
		s.rounds[i] = &cat
	}

	for p := range s.answers {
		for round := 0; round < len(s.rounds) && round < len(snap.Answers[p]); round++ {
			s.answers[p][round] = append([]Answer(nil), snap.Answers[p][round]...)
		}
		for round := 0; round < len(s.rounds) && round < len(snap.Scores[p]); round++ {
			s.scores[p][round] = snap.Scores[p][round]
		}
		if snap.TurnEnds[p] != 0 {
			s.turnEnds[p] = time.UnixMilli(snap.TurnEnds[p]).UTC()
		}
	}

	s.firstTurn = snap.FirstTurn
	s.currentRound = snap.CurrentRound
	if s.currentRound < 0 || s.currentRound > len(s.rounds) {
		return nil, nil, fmt.Errorf("snapshot current round %d out of range", s.currentRound)
	}
	s.played = snap.Played
	s.everPlayed = snap.EverPlayed
	s.concluded = snap.Concluded
	if snap.Expiry != nil {
		expiry := time.UnixMilli(*snap.Expiry).UTC()
		s.expiry = &expiry
	}
	return s, dropped, nil
}

// Codec marshals sessions to and from the durable snapshot form. It
// implements the codec contract of the persistence wrapper.
type Codec struct {
	Resolver category.Resolver
	// OnDroppedCategory, when set, observes every persisted category name
	// that failed to re-resolve during a load.
	OnDroppedCategory func(name string)
}

// Marshal encodes the session's snapshot as JSON.
func (c Codec) Marshal(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is required")
	}
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal session snapshot: %w", err)
	}
	return payload, nil
}

// Unmarshal decodes a JSON snapshot and rebuilds the session.
func (c Codec) Unmarshal(data []byte) (*Session, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	s, dropped, err := FromSnapshot(snap, c.Resolver)
	if err != nil {
		return nil, err
	}
	if c.OnDroppedCategory != nil {
		for _, name := range dropped {
			c.OnDroppedCategory(name)
		}
	}
	return s, nil
}
