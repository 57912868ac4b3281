package match

import (
	"context"
	"fmt"
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
)

// Scorer is the word-scoring policy collaborator. A zero score means the word
// earns no credit; it is never an error. Implementations may suspend on
// cross-entity calls.
type Scorer interface {
	ScoreWord(ctx context.Context, cat category.Category, word string) (uint8, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, cat category.Category, word string) (uint8, error)

// ScoreWord calls f.
func (f ScorerFunc) ScoreWord(ctx context.Context, cat category.Category, word string) (uint8, error) {
	return f(ctx, cat, word)
}

// PlayWordStatus classifies the outcome of a word submission.
type PlayWordStatus int

// PlayWord outcomes.
const (
	// PlayWordOK means the word was recorded and scored.
	PlayWordOK PlayWordStatus = iota
	// PlayWordDuplicate means the corrected word was already played this round.
	PlayWordDuplicate
	// PlayWordTurnOver means the player's turn deadline has passed.
	PlayWordTurnOver
)

// PlayWordResult reports a word submission. Word carries the corrected
// spelling, or the submitted word when no correction existed, so callers can
// surface "did you mean" feedback. CategoryName names the round's category.
type PlayWordResult struct {
	Status       PlayWordStatus
	CategoryName string
	Word         string
	Score        uint8
}

// PlayWord submits a word for the player's in-progress turn.
//
// The word is corrected against the current round's category using the
// length-indexed edit-distance table. An uncorrectable word is recorded with
// a zero score and never reaches the scoring policy, but still participates
// in duplicate detection. A scoring-policy failure propagates as an error
// with no state change.
func (s *Session) PlayWord(ctx context.Context, now time.Time, player Player, word string, scorer Scorer, distances category.DistanceTable) (PlayWordResult, error) {
	if !player.Valid() || !now.Before(s.turnEnds[player]) {
		return PlayWordResult{Status: PlayWordTurnOver}, nil
	}

	cat := s.rounds[s.currentRound]
	if cat == nil {
		// A running turn implies the round's category was set when it started.
		return PlayWordResult{}, fmt.Errorf("round %d has a turn in progress but no category", s.currentRound)
	}

	corrected, ok := cat.Correct(word, distances)
	played := corrected
	if !ok {
		played = category.Normalize(word)
	}

	for _, answer := range s.answers[player][s.currentRound] {
		if answer.Word == played {
			return PlayWordResult{
				Status:       PlayWordDuplicate,
				CategoryName: cat.Name(),
				Word:         played,
			}, nil
		}
	}

	var score uint8
	if ok {
		var err error
		score, err = scorer.ScoreWord(ctx, *cat, corrected)
		if err != nil {
			return PlayWordResult{}, fmt.Errorf("score word %q: %w", corrected, err)
		}
	}

	s.answers[player][s.currentRound] = append(s.answers[player][s.currentRound], Answer{Word: played, Score: score})
	if score > 0 {
		s.scores[player][s.currentRound] += uint16(score)
	}

	return PlayWordResult{
		Status:       PlayWordOK,
		CategoryName: cat.Name(),
		Word:         played,
		Score:        score,
	}, nil
}
