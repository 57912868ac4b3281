package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Arshia001/FLServer-sub001/internal/game/player"
	"github.com/Arshia001/FLServer-sub001/internal/game/state"
)

type playerCodec struct{}

func (playerCodec) Marshal(st *player.State) ([]byte, error) {
	return json.Marshal(st)
}

func (playerCodec) Unmarshal(data []byte) (*player.State, error) {
	st := new(player.State)
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("decode player state: %w", err)
	}
	return st, nil
}

// PlayerEntity hosts one player's profile projection.
type PlayerEntity struct {
	id     string
	access *state.Access[*player.State]
}

func (e *PlayerEntity) Activate(ctx context.Context) error {
	return e.access.Load(ctx)
}

func (e *PlayerEntity) Flush(ctx context.Context) error {
	return e.access.PersistPending(ctx)
}

func (e *PlayerEntity) Deactivate(ctx context.Context) error {
	return e.access.PersistPending(ctx)
}
