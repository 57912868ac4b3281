package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
	"github.com/Arshia001/FLServer-sub001/internal/game/host"
	"github.com/Arshia001/FLServer-sub001/internal/game/match"
	"github.com/Arshia001/FLServer-sub001/internal/game/player"
	"github.com/Arshia001/FLServer-sub001/internal/game/rating"
	"github.com/Arshia001/FLServer-sub001/internal/game/state"
	"github.com/Arshia001/FLServer-sub001/internal/game/storage"
)

// Entity kinds as persisted in the entity state store.
const (
	kindMatch  = "match"
	kindPlayer = "player"
)

// Engine errors.
var (
	// ErrNotInMatch means the player ID is bound to neither seat.
	ErrNotInMatch = errors.New("player is not part of this match")
	// ErrMatchFull means both seats are already taken.
	ErrMatchFull = errors.New("match already has two players")
	// ErrUnknownCategory means the category name is not configured.
	ErrUnknownCategory = errors.New("unknown category")
)

// Config carries the engine's collaborators and match parameters.
type Config struct {
	Store      storage.EntityStateStore
	Categories *category.Repository
	// Scorer is the external scoring policy consulted for corrected words.
	Scorer    match.Scorer
	Distances category.DistanceTable
	Rating    rating.Config

	RoundCount     int
	ExpiryInterval time.Duration
	TurnTime       time.Duration

	// Clock supplies current time; defaults to time.Now. Injected so tests
	// drive expiry without sleeping.
	Clock func() time.Time
}

// Engine owns the match and player entity hosts.
type Engine struct {
	cfg     Config
	matches *host.Host[*MatchEntity]
	players *host.Host[*PlayerEntity]
}

// New validates the configuration and creates an engine. Entities activate
// on first use; New performs no I/O.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Store == nil:
		return nil, fmt.Errorf("engine: store is required")
	case cfg.Categories == nil:
		return nil, fmt.Errorf("engine: category repository is required")
	case cfg.Scorer == nil:
		return nil, fmt.Errorf("engine: scorer is required")
	case cfg.RoundCount < 1:
		return nil, fmt.Errorf("engine: round count must be positive, got %d", cfg.RoundCount)
	case cfg.TurnTime <= 0:
		return nil, fmt.Errorf("engine: turn time must be positive, got %v", cfg.TurnTime)
	}
	if cfg.Distances == nil {
		cfg.Distances = category.DefaultDistanceTable()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	e := &Engine{cfg: cfg}
	e.matches = host.New(kindMatch, func(id string) (*MatchEntity, error) {
		codec := matchCodec{session: match.Codec{
			Resolver: cfg.Categories,
			OnDroppedCategory: func(name string) {
				log.Printf("match %s: dropped unknown category %q from stored state", id, name)
			},
		}}
		initial := &matchState{Session: match.NewSession(cfg.RoundCount, cfg.ExpiryInterval)}
		return &MatchEntity{
			id:     id,
			access: state.New(cfg.Store, kindMatch, id, codec, initial),
		}, nil
	})
	e.players = host.New(kindPlayer, func(id string) (*PlayerEntity, error) {
		initial := &player.State{Profile: player.Profile{ID: id}}
		return &PlayerEntity{
			id:     id,
			access: state.New(cfg.Store, kindPlayer, id, playerCodec{}, initial),
		}, nil
	})
	return e, nil
}

func (e *Engine) now() time.Time {
	return e.cfg.Clock()
}

// CreateMatch mints a match with the creator in seat 0 and returns its ID.
func (e *Engine) CreateMatch(ctx context.Context, playerID string) (string, error) {
	if playerID == "" {
		return "", fmt.Errorf("create match: player ID is required")
	}
	id := uuid.NewString()
	err := e.matches.Call(ctx, id, func(ctx context.Context, m *MatchEntity) error {
		return m.access.Update(ctx, func(st *matchState) {
			st.Players[0] = playerID
		})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// JoinMatch binds playerID to seat 1 and starts the abandonment clock.
// Joining a match the player is already part of is a no-op.
func (e *Engine) JoinMatch(ctx context.Context, matchID, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("join match: player ID is required")
	}
	return e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		st := m.access.State()
		if playerID == st.Players[0] || playerID == st.Players[1] {
			return nil
		}
		if st.Players[1] != "" {
			return fmt.Errorf("join match %s: %w", matchID, ErrMatchFull)
		}
		now := e.now()
		return m.access.Update(ctx, func(st *matchState) {
			st.Players[1] = playerID
			st.Session.SecondPlayerJoined(now)
		})
	})
}

// SetCategory assigns a configured category to a round of the match.
// The result reports the state machine's verdict; an unconfigured category
// name is a contract fault and comes back as ErrUnknownCategory.
func (e *Engine) SetCategory(ctx context.Context, matchID string, round int, categoryName string) (match.SetCategoryResult, error) {
	cat, ok := e.cfg.Categories.Resolve(categoryName)
	if !ok {
		return 0, fmt.Errorf("set category %q: %w", categoryName, ErrUnknownCategory)
	}
	var res match.SetCategoryResult
	err := e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		return m.access.UpdateIf(ctx, func(st *matchState) bool {
			res = st.Session.SetCategory(round, cat)
			return res == match.SetCategoryOK
		})
	})
	return res, err
}

// StartTurn starts the player's timed turn in the match's current round.
func (e *Engine) StartTurn(ctx context.Context, matchID, playerID string) (match.StartTurnResult, error) {
	var res match.StartTurnResult
	err := e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		seat, ok := m.access.State().seat(playerID)
		if !ok {
			return fmt.Errorf("start turn in %s: %w", matchID, ErrNotInMatch)
		}
		now := e.now()
		if err := m.access.UpdateIf(ctx, func(st *matchState) bool {
			res = st.Session.StartRound(now, seat, e.cfg.TurnTime)
			return res.Status == match.StartTurnOK
		}); err != nil {
			return err
		}
		return e.maybeConclude(ctx, m)
	})
	return res, err
}

// PlayWord submits a word for the player's running turn. Accepted words are
// persisted lazily; the periodic flush and entity deactivation bound the
// loss window, which is acceptable for per-word submissions. Rejected
// submissions mutate nothing and schedule no write.
func (e *Engine) PlayWord(ctx context.Context, matchID, playerID, word string) (match.PlayWordResult, error) {
	var res match.PlayWordResult
	err := e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		seat, ok := m.access.State().seat(playerID)
		if !ok {
			return fmt.Errorf("play word in %s: %w", matchID, ErrNotInMatch)
		}
		now := e.now()
		var playErr error
		m.access.UpdateLazyIf(func(st *matchState) bool {
			res, playErr = st.Session.PlayWord(ctx, now, seat, word, e.cfg.Scorer, e.cfg.Distances)
			return playErr == nil && res.Status == match.PlayWordOK
		})
		return playErr
	})
	return res, err
}

// EndTurn ends the player's turn before its deadline. It reports whether a
// running turn was actually ended.
func (e *Engine) EndTurn(ctx context.Context, matchID, playerID string) (bool, error) {
	var ended bool
	err := e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		seat, ok := m.access.State().seat(playerID)
		if !ok {
			return fmt.Errorf("end turn in %s: %w", matchID, ErrNotInMatch)
		}
		now := e.now()
		if err := m.access.UpdateIf(ctx, func(st *matchState) bool {
			ended = st.Session.EndTurn(now, seat)
			return ended
		}); err != nil {
			return err
		}
		return e.maybeConclude(ctx, m)
	})
	return ended, err
}

// ExtendTurn adds time to the player's running turn, returning the new
// deadline. A turn that already ended is not resurrected: the second result
// is false and nothing is persisted.
func (e *Engine) ExtendTurn(ctx context.Context, matchID, playerID string, amount time.Duration) (time.Time, bool, error) {
	var (
		deadline time.Time
		extended bool
	)
	err := e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		seat, ok := m.access.State().seat(playerID)
		if !ok {
			return fmt.Errorf("extend turn in %s: %w", matchID, ErrNotInMatch)
		}
		now := e.now()
		return m.access.UpdateIf(ctx, func(st *matchState) bool {
			deadline, extended = st.Session.ExtendTurn(now, seat, amount)
			return extended
		})
	})
	return deadline, extended, err
}

// MatchView is a read-only projection of a match for callers outside the
// entity.
type MatchView struct {
	Players      [2]string
	RoundCount   int
	CurrentRound int
	Scores       [2]uint16
	Finished     bool
	Expired      bool
	Concluded    bool
}

// Match returns the match's current projection.
func (e *Engine) Match(ctx context.Context, matchID string) (MatchView, error) {
	var view MatchView
	err := e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		st := m.access.State()
		now := e.now()
		view = MatchView{
			Players:      st.Players,
			RoundCount:   st.Session.RoundCount(),
			CurrentRound: st.Session.CurrentRound(now),
			Scores: [2]uint16{
				st.Session.TotalScore(match.Player0),
				st.Session.TotalScore(match.Player1),
			},
			Finished:  st.Session.Finished(now),
			Expired:   st.Session.Expired(now),
			Concluded: st.Session.Concluded(),
		}
		return nil
	})
	return view, err
}

// ClearMatch removes the match's durable state. The entity itself retires
// on the next idle sweep.
func (e *Engine) ClearMatch(ctx context.Context, matchID string) error {
	return e.matches.Call(ctx, matchID, func(ctx context.Context, m *MatchEntity) error {
		return m.access.Clear(ctx)
	})
}

// RegisterPlayer records a player's display name and avatar.
func (e *Engine) RegisterPlayer(ctx context.Context, playerID, name, avatarID string) error {
	if playerID == "" {
		return fmt.Errorf("register player: player ID is required")
	}
	return e.players.Call(ctx, playerID, func(ctx context.Context, p *PlayerEntity) error {
		return p.access.Update(ctx, func(st *player.State) {
			st.Profile.Name = name
			st.Profile.AvatarID = avatarID
		})
	})
}

// FetchPlayerProfile returns the player's current public profile. It
// satisfies the leaderboard's fetcher contract.
func (e *Engine) FetchPlayerProfile(ctx context.Context, playerID string) (player.Profile, error) {
	var profile player.Profile
	err := e.players.Call(ctx, playerID, func(ctx context.Context, p *PlayerEntity) error {
		profile = p.access.State().Profile
		return nil
	})
	return profile, err
}

// maybeConclude applies the rating deltas once per match, as soon as the
// match is finished or expired. Runs inside the match entity's call.
//
// The rating writes land before the concluded flag: a crash between the two
// re-applies both deltas when the match is next swept. Conclusion is
// at-least-once, never lost.
func (e *Engine) maybeConclude(ctx context.Context, m *MatchEntity) error {
	st := m.access.State()
	now := e.now()
	if st.Session.Concluded() {
		return nil
	}
	if !st.Session.Finished(now) && !st.Session.Expired(now) {
		return nil
	}

	outcome := st.Session.Outcome()
	gain := rating.Gain(
		st.Session.TotalScore(match.Player0),
		st.Session.TotalScore(match.Player1),
		outcome, e.cfg.Rating,
	)
	if err := e.applyResult(ctx, st.Players[0], outcome, gain); err != nil {
		return err
	}
	if err := e.applyResult(ctx, st.Players[1], outcome.Inverted(), gain); err != nil {
		return err
	}
	// the cross-entity calls above are suspension points; re-read the state
	// rather than reusing st
	return m.access.Update(ctx, func(st *matchState) {
		st.Session.MarkConcluded()
	})
}

// applyResult records a concluded match on one player entity. An empty seat
// (a match that expired before anyone joined) is skipped.
func (e *Engine) applyResult(ctx context.Context, playerID string, outcome rating.Outcome, gain uint) error {
	if playerID == "" {
		return nil
	}
	return e.players.Call(ctx, playerID, func(ctx context.Context, p *PlayerEntity) error {
		return p.access.Update(ctx, func(st *player.State) {
			st.ApplyMatchResult(outcome, gain)
		})
	})
}

// Sweep concludes live matches that expired or finished without a closing
// call. Scheduled periodically by the server command.
func (e *Engine) Sweep(ctx context.Context) error {
	var errs []error
	for _, id := range e.matches.Keys() {
		err := e.matches.Call(ctx, id, func(ctx context.Context, m *MatchEntity) error {
			return e.maybeConclude(ctx, m)
		})
		if err != nil && !errors.Is(err, host.ErrHostClosed) {
			errs = append(errs, fmt.Errorf("sweep match %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Flush persists pending lazy writes across all live entities.
func (e *Engine) Flush(ctx context.Context) error {
	return errors.Join(e.matches.FlushAll(ctx), e.players.FlushAll(ctx))
}

// DeactivateIdle retires entities idle for at least idleFor, flushing them
// on the way out.
func (e *Engine) DeactivateIdle(idleFor time.Duration) {
	e.matches.DeactivateIdle(idleFor)
	e.players.DeactivateIdle(idleFor)
}

// Shutdown drains both entity hosts.
func (e *Engine) Shutdown(ctx context.Context) error {
	return errors.Join(e.matches.Shutdown(ctx), e.players.Shutdown(ctx))
}
