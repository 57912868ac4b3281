package match

import (
	"context"
	"testing"
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
	"github.com/Arshia001/FLServer-sub001/internal/game/rating"
)

var baseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

const (
	testTurnTime       = time.Minute
	testExpiryInterval = 30 * time.Second
)

func animalCategory() category.Category {
	return category.New("animals", map[string][]string{
		"horse":    {"hoarse"},
		"elephant": nil,
		"cat":      nil,
	})
}

func colorCategory() category.Category {
	return category.New("colors", map[string][]string{
		"red":  nil,
		"blue": nil,
	})
}

// fixedScorer scores every corrected word with a constant value.
type fixedScorer uint8

func (f fixedScorer) ScoreWord(context.Context, category.Category, string) (uint8, error) {
	return uint8(f), nil
}

func TestSetCategoryMonotonicFill(t *testing.T) {
	tests := []struct {
		name  string
		order []int
		want  []SetCategoryResult
	}{
		{"in order", []int{0, 1, 2}, []SetCategoryResult{SetCategoryOK, SetCategoryOK, SetCategoryOK}},
		{"skip ahead", []int{1}, []SetCategoryResult{SetCategoryPreviousUnset}},
		{"skip to last", []int{2, 0}, []SetCategoryResult{SetCategoryPreviousUnset, SetCategoryOK}},
		{"repeat slot", []int{0, 0}, []SetCategoryResult{SetCategoryOK, SetCategoryAlreadySet}},
		{"out of bounds", []int{3}, []SetCategoryResult{SetCategoryIndexOutOfBounds}},
		{"negative index", []int{-1}, []SetCategoryResult{SetCategoryIndexOutOfBounds}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(3, testExpiryInterval)
			for i, round := range tt.order {
				got := s.SetCategory(round, animalCategory())
				if got != tt.want[i] {
					t.Fatalf("SetCategory(%d) = %v, want %v", round, got, tt.want[i])
				}
			}
		})
	}
}

func TestStartRoundRequiresCategory(t *testing.T) {
	s := NewSession(2, testExpiryInterval)

	result := s.StartRound(baseTime, Player0, testTurnTime)
	if result.Status != StartTurnMustChooseCategory {
		t.Fatalf("expected MustChooseCategory, got %v", result.Status)
	}
	if result.CategoryName != "" {
		t.Fatalf("expected category withheld on non-success, got %q", result.CategoryName)
	}
	if s.ExpiryTime() != nil {
		t.Fatal("expected no state change on MustChooseCategory")
	}
}

func TestStartRoundAbandonmentExemption(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())

	// Player 0's very first turn of the match runs no abandonment clock: the
	// engine may still be waiting for an opponent.
	result := s.StartRound(baseTime, Player0, testTurnTime)
	if result.Status != StartTurnOK {
		t.Fatalf("expected OK, got %v", result.Status)
	}
	if result.CategoryName != "animals" {
		t.Fatalf("expected category reported on success, got %q", result.CategoryName)
	}
	if s.ExpiryTime() != nil {
		t.Fatal("expected no expiry on the match's opening turn")
	}

	// The second turn starts the clock: now + turnTime + expiryInterval.
	secondStart := baseTime.Add(testTurnTime)
	result = s.StartRound(secondStart, Player1, testTurnTime)
	if result.Status != StartTurnOK {
		t.Fatalf("expected OK for player 1, got %v", result.Status)
	}
	expiry := s.ExpiryTime()
	if expiry == nil {
		t.Fatal("expected expiry after second turn start")
	}
	want := secondStart.Add(testTurnTime + testExpiryInterval)
	if !expiry.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiry)
	}
}

func TestSecondPlayerJoinedStartsClockOnce(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())

	s.SecondPlayerJoined(baseTime)
	expiry := s.ExpiryTime()
	if expiry == nil || !expiry.Equal(baseTime.Add(testExpiryInterval)) {
		t.Fatalf("expected expiry %v, got %v", baseTime.Add(testExpiryInterval), expiry)
	}

	// After player 1 takes a turn, late join events must not reset the clock.
	s.StartRound(baseTime, Player0, testTurnTime)
	s.EndTurn(baseTime.Add(time.Second), Player0)
	s.StartRound(baseTime.Add(2*time.Second), Player1, testTurnTime)
	before := s.ExpiryTime()

	s.SecondPlayerJoined(baseTime.Add(10 * time.Second))
	after := s.ExpiryTime()
	if !after.Equal(*before) {
		t.Fatalf("expected duplicate join to be a no-op, expiry moved %v -> %v", before, after)
	}
}

func TestStartRoundExpiredMatch(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	s.SecondPlayerJoined(baseTime)

	late := baseTime.Add(testExpiryInterval)
	if !s.Expired(late) {
		t.Fatal("expected match expired at deadline")
	}
	result := s.StartRound(late, Player0, testTurnTime)
	if result.Status != StartTurnFinished {
		t.Fatalf("expected Finished for expired match, got %v", result.Status)
	}
}

func TestStartRoundTurnOrdering(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	s.SetCategory(1, colorCategory())

	if result := s.StartRound(baseTime, Player0, testTurnTime); result.Status != StartTurnOK {
		t.Fatalf("expected player 0 to open round 0, got %v", result.Status)
	}
	// Player 0 cannot start again, but player 1 may run their turn while
	// player 0's clock is still ticking.
	if result := s.StartRound(baseTime, Player0, testTurnTime); result.Status != StartTurnAlreadyPlayed {
		t.Fatalf("expected AlreadyPlayed, got %v", result.Status)
	}
	if result := s.StartRound(baseTime.Add(time.Second), Player1, testTurnTime); result.Status != StartTurnOK {
		t.Fatalf("expected OK for player 1 during player 0's turn, got %v", result.Status)
	}

	s.EndTurn(baseTime.Add(2*time.Second), Player0)
	s.EndTurn(baseTime.Add(3*time.Second), Player1)

	// Round 1 opener alternates to player 1.
	if result := s.StartRound(baseTime.Add(5*time.Second), Player0, testTurnTime); result.Status != StartTurnNotYourTurn {
		t.Fatalf("expected NotYourTurn for player 0 in round 1, got %v", result.Status)
	}
	result := s.StartRound(baseTime.Add(5*time.Second), Player1, testTurnTime)
	if result.Status != StartTurnOK {
		t.Fatalf("expected player 1 to open round 1, got %v", result.Status)
	}
	if result.Round != 1 {
		t.Fatalf("expected round 1, got %d", result.Round)
	}
	if result.CategoryName != "colors" {
		t.Fatalf("expected colors category, got %q", result.CategoryName)
	}
}

func TestOverlappingTurnsScoreWhileClockRuns(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	s.SetCategory(1, colorCategory())
	ctx := context.Background()

	if result := s.StartRound(baseTime, Player0, testTurnTime); result.Status != StartTurnOK {
		t.Fatalf("expected OK for player 0, got %v", result.Status)
	}
	if s.ExpiryTime() != nil {
		t.Fatal("expected no expiry on the opening turn")
	}

	// Player 1 starts immediately; the abandonment clock now covers the
	// remainder of both turns plus the grace period.
	if result := s.StartRound(baseTime, Player1, testTurnTime); result.Status != StartTurnOK {
		t.Fatalf("expected OK for player 1, got %v", result.Status)
	}
	expiry := s.ExpiryTime()
	want := baseTime.Add(testTurnTime + testExpiryInterval)
	if expiry == nil || !expiry.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiry)
	}

	// Player 0's clock is still running, so scoring proceeds mid-overlap.
	result, err := s.PlayWord(ctx, baseTime.Add(time.Second), Player0, "horse", fixedScorer(5), category.DefaultDistanceTable())
	if err != nil {
		t.Fatalf("play word: %v", err)
	}
	if result.Status != PlayWordOK || result.Score != 5 {
		t.Fatalf("expected (OK, 5), got (%v, %d)", result.Status, result.Score)
	}
	repeat, err := s.PlayWord(ctx, baseTime.Add(2*time.Second), Player0, "horse", fixedScorer(5), category.DefaultDistanceTable())
	if err != nil {
		t.Fatalf("play word: %v", err)
	}
	if repeat.Status != PlayWordDuplicate {
		t.Fatalf("expected Duplicate, got %v", repeat.Status)
	}
	if got := s.RoundScore(Player0, 0); got != 5 {
		t.Fatalf("expected round score 5, got %d", got)
	}
}

func TestMatchFinishes(t *testing.T) {
	s := NewSession(1, testExpiryInterval)
	s.SetCategory(0, animalCategory())

	s.StartRound(baseTime, Player0, testTurnTime)
	s.EndTurn(baseTime.Add(time.Second), Player0)
	s.StartRound(baseTime.Add(2*time.Second), Player1, testTurnTime)
	s.EndTurn(baseTime.Add(3*time.Second), Player1)

	now := baseTime.Add(4 * time.Second)
	if !s.Finished(now) {
		t.Fatal("expected match finished after both turns of the only round")
	}
	if result := s.StartRound(now, Player0, testTurnTime); result.Status != StartTurnFinished {
		t.Fatalf("expected Finished, got %v", result.Status)
	}
}

func TestExtendTurn(t *testing.T) {
	s := NewSession(1, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	s.StartRound(baseTime, Player0, testTurnTime)

	deadline, ok := s.ExtendTurn(baseTime.Add(30*time.Second), Player0, 20*time.Second)
	if !ok {
		t.Fatal("expected extension during the turn")
	}
	want := baseTime.Add(testTurnTime + 20*time.Second)
	if !deadline.Equal(want) {
		t.Fatalf("expected deadline %v, got %v", want, deadline)
	}

	// A paid extension must never resurrect an ended turn.
	if _, ok := s.ExtendTurn(want, Player0, time.Minute); ok {
		t.Fatal("expected no effect after the turn ended")
	}
	if _, ok := s.ExtendTurn(baseTime, Player1, time.Minute); ok {
		t.Fatal("expected no effect for a player with no turn")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		score0 uint8
		score1 uint8
		want   rating.Outcome
	}{
		{"player 0 ahead", 9, 4, rating.Win},
		{"player 1 ahead", 2, 7, rating.Loss},
		{"level", 5, 5, rating.Draw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := playedOutSession(t, tt.score0, tt.score1)
			if got := s.Outcome(); got != tt.want {
				t.Fatalf("Outcome() = %v, want %v", got, tt.want)
			}
		})
	}
}

// playedOutSession runs a one-round match where each player scores once with
// the given value.
func playedOutSession(t *testing.T, score0, score1 uint8) *Session {
	t.Helper()
	ctx := context.Background()
	s := NewSession(1, testExpiryInterval)
	s.SetCategory(0, animalCategory())

	s.StartRound(baseTime, Player0, testTurnTime)
	if _, err := s.PlayWord(ctx, baseTime.Add(time.Second), Player0, "horse", fixedScorer(score0), category.DefaultDistanceTable()); err != nil {
		t.Fatalf("play word: %v", err)
	}
	s.EndTurn(baseTime.Add(2*time.Second), Player0)

	s.StartRound(baseTime.Add(3*time.Second), Player1, testTurnTime)
	if _, err := s.PlayWord(ctx, baseTime.Add(4*time.Second), Player1, "cat", fixedScorer(score1), category.DefaultDistanceTable()); err != nil {
		t.Fatalf("play word: %v", err)
	}
	s.EndTurn(baseTime.Add(5*time.Second), Player1)
	return s
}
