package match

import (
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
)

// SetCategoryResult reports the outcome of assigning a round category.
type SetCategoryResult int

// SetCategory outcomes.
const (
	// SetCategoryOK means the category was assigned.
	SetCategoryOK SetCategoryResult = iota
	// SetCategoryIndexOutOfBounds means the round index does not exist.
	SetCategoryIndexOutOfBounds
	// SetCategoryAlreadySet means the round already has a category.
	SetCategoryAlreadySet
	// SetCategoryPreviousUnset means an earlier round still has no category.
	SetCategoryPreviousUnset
)

// SetCategory assigns a category to a round. Rounds fill monotonically from
// the start and each slot is set at most once. The operation has no time or
// turn effects.
func (s *Session) SetCategory(round int, cat category.Category) SetCategoryResult {
	if round < 0 || round >= len(s.rounds) {
		return SetCategoryIndexOutOfBounds
	}
	if s.rounds[round] != nil {
		return SetCategoryAlreadySet
	}
	if round > 0 && s.rounds[round-1] == nil {
		return SetCategoryPreviousUnset
	}
	s.rounds[round] = &cat
	return SetCategoryOK
}

// StartTurnStatus classifies the outcome of a turn-start attempt.
type StartTurnStatus int

// StartRound outcomes.
const (
	// StartTurnOK means the player's turn is now running.
	StartTurnOK StartTurnStatus = iota
	// StartTurnMustChooseCategory means the round has no category yet.
	StartTurnMustChooseCategory
	// StartTurnFinished means the match already finished or expired.
	StartTurnFinished
	// StartTurnNotYourTurn means the alternation order puts the other player first.
	StartTurnNotYourTurn
	// StartTurnAlreadyPlayed means the player already took this round's turn.
	StartTurnAlreadyPlayed
)

// StartTurnResult reports a turn-start attempt. CategoryName and Deadline are
// populated only on StartTurnOK; the category is deliberately withheld from
// callers that are not entitled to see it yet.
type StartTurnResult struct {
	Status       StartTurnStatus
	CategoryName string
	Round        int
	Deadline     time.Time
}

// StartRound starts the player's timed turn in the current round.
//
// The abandonment clock normally restarts to cover the new turn plus the
// configured grace period. The single exception is player 0's very first turn
// of the whole match: the engine may still be waiting for an opponent, so no
// abandonment deadline is set for it.
func (s *Session) StartRound(now time.Time, player Player, turnTime time.Duration) StartTurnResult {
	if !player.Valid() {
		return StartTurnResult{Status: StartTurnNotYourTurn}
	}
	if s.Expired(now) || s.Finished(now) {
		return StartTurnResult{Status: StartTurnFinished}
	}
	s.settle(now)

	cat := s.rounds[s.currentRound]
	if cat == nil {
		return StartTurnResult{Status: StartTurnMustChooseCategory}
	}

	if s.played[player] {
		return StartTurnResult{Status: StartTurnAlreadyPlayed}
	}
	firstEver := !s.everPlayed[0] && !s.everPlayed[1]
	if firstEver {
		s.firstTurn = player
	} else if !s.played[player.Opponent()] && s.starter(s.currentRound) != player {
		return StartTurnResult{Status: StartTurnNotYourTurn}
	}

	deadline := now.Add(turnTime)
	s.turnEnds[player] = deadline
	s.played[player] = true
	s.everPlayed[player] = true

	if !(firstEver && player == Player0) {
		expiry := now.Add(turnTime + s.expiryInterval)
		s.expiry = &expiry
	}

	return StartTurnResult{
		Status:       StartTurnOK,
		CategoryName: cat.Name(),
		Round:        s.currentRound,
		Deadline:     deadline,
	}
}

// SecondPlayerJoined starts the abandonment clock once an opponent attaches
// to a match created while waiting for one. Late or duplicate join events are
// ignored: the call is a no-op when player 1 has already taken a turn.
func (s *Session) SecondPlayerJoined(now time.Time) {
	if s.everPlayed[Player1] {
		return
	}
	expiry := now.Add(s.expiryInterval)
	s.expiry = &expiry
}

// EndTurn concludes the player's in-progress turn early, letting the opponent
// start without waiting out the clock. It reports false when the player has
// no turn in progress.
func (s *Session) EndTurn(now time.Time, player Player) bool {
	if !player.Valid() || !now.Before(s.turnEnds[player]) {
		return false
	}
	s.turnEnds[player] = now
	s.settle(now)
	return true
}

// ExtendTurn adds time to the player's in-progress turn and returns the new
// deadline. A turn that already ended cannot be resurrected: the call reports
// false and has no effect.
func (s *Session) ExtendTurn(now time.Time, player Player, amount time.Duration) (time.Time, bool) {
	if !player.Valid() || !now.Before(s.turnEnds[player]) {
		return time.Time{}, false
	}
	deadline := s.turnEnds[player].Add(amount)
	s.turnEnds[player] = deadline
	if s.expiry != nil {
		expiry := deadline.Add(s.expiryInterval)
		s.expiry = &expiry
	}
	return deadline, true
}
