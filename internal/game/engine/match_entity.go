package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Arshia001/FLServer-sub001/internal/game/match"
	"github.com/Arshia001/FLServer-sub001/internal/game/state"
)

// matchState is a match entity's durable state: the session state machine
// plus the player IDs bound to its two seats. Seat 0 is the match creator.
type matchState struct {
	Players [2]string
	Session *match.Session
}

// matchEnvelope is the persisted form. The session keeps its own versioned
// snapshot contract; the envelope only adds the seat assignment around it.
type matchEnvelope struct {
	Players [2]string       `json:"players"`
	Session json.RawMessage `json:"session"`
}

type matchCodec struct {
	session match.Codec
}

func (c matchCodec) Marshal(st *matchState) ([]byte, error) {
	session, err := c.session.Marshal(st.Session)
	if err != nil {
		return nil, err
	}
	return json.Marshal(matchEnvelope{Players: st.Players, Session: session})
}

func (c matchCodec) Unmarshal(data []byte) (*matchState, error) {
	var env matchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode match envelope: %w", err)
	}
	session, err := c.session.Unmarshal(env.Session)
	if err != nil {
		return nil, err
	}
	return &matchState{Players: env.Players, Session: session}, nil
}

// MatchEntity hosts one match under the single-writer guarantee.
type MatchEntity struct {
	id     string
	access *state.Access[*matchState]
}

func (e *MatchEntity) Activate(ctx context.Context) error {
	return e.access.Load(ctx)
}

func (e *MatchEntity) Flush(ctx context.Context) error {
	return e.access.PersistPending(ctx)
}

func (e *MatchEntity) Deactivate(ctx context.Context) error {
	return e.access.PersistPending(ctx)
}

// seat returns the session-side player slot bound to the given player ID.
func (st *matchState) seat(playerID string) (match.Player, bool) {
	switch playerID {
	case "":
		return 0, false
	case st.Players[0]:
		return match.Player0, true
	case st.Players[1]:
		return match.Player1, true
	}
	return 0, false
}
