package match

import (
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
	"github.com/Arshia001/FLServer-sub001/internal/game/rating"
)

// Player indexes one of the two match participants. Player 0 created the
// match; player 1 joined it.
type Player uint8

// Player identifiers.
const (
	Player0 Player = 0
	Player1 Player = 1
)

// Opponent returns the other participant.
func (p Player) Opponent() Player {
	return 1 - p
}

// Valid reports whether p names a real participant.
func (p Player) Valid() bool {
	return p <= Player1
}

// Answer is one recorded submission: the corrected word (or the literal word
// when no correction existed) and the score it earned.
type Answer struct {
	Word  string `json:"word"`
	Score uint8  `json:"score"`
}

// Session is the state of one two-player match. All methods assume the
// single-writer execution guarantee provided by the hosting runtime; none of
// them are safe for concurrent use.
type Session struct {
	rounds         []*category.Category
	currentRound   int
	answers        [2][][]Answer
	scores         [2][]uint16
	turnEnds       [2]time.Time
	played         [2]bool // turn taken in the current round
	everPlayed     [2]bool
	firstTurn      Player
	expiryInterval time.Duration
	expiry         *time.Time
	concluded      bool
}

// NewSession creates a match with the given round count and abandonment grace
// period. All rounds start unset and no abandonment clock runs until a turn
// is taken or the second player joins.
func NewSession(roundCount int, expiryInterval time.Duration) *Session {
	if roundCount < 1 {
		roundCount = 1
	}
	s := &Session{
		rounds:         make([]*category.Category, roundCount),
		expiryInterval: expiryInterval,
	}
	for p := range s.answers {
		s.answers[p] = make([][]Answer, roundCount)
		s.scores[p] = make([]uint16, roundCount)
	}
	return s
}

// RoundCount returns the configured number of rounds.
func (s *Session) RoundCount() int {
	return len(s.rounds)
}

// CurrentRound returns the index of the round in play, settled against now.
// It equals RoundCount when the match is finished.
func (s *Session) CurrentRound(now time.Time) int {
	return s.settledRound(now)
}

// RoundCategoryName returns the category name assigned to a round, or the
// empty string when the round is out of range or unset.
func (s *Session) RoundCategoryName(round int) string {
	if round < 0 || round >= len(s.rounds) || s.rounds[round] == nil {
		return ""
	}
	return s.rounds[round].Name()
}

// Answers returns a copy of the words a player recorded in a round.
func (s *Session) Answers(player Player, round int) []Answer {
	if !player.Valid() || round < 0 || round >= len(s.rounds) {
		return nil
	}
	out := make([]Answer, len(s.answers[player][round]))
	copy(out, s.answers[player][round])
	return out
}

// RoundScore returns a player's accumulated positive score for a round.
func (s *Session) RoundScore(player Player, round int) uint16 {
	if !player.Valid() || round < 0 || round >= len(s.rounds) {
		return 0
	}
	return s.scores[player][round]
}

// TotalScore returns a player's score summed across all rounds.
func (s *Session) TotalScore(player Player) uint16 {
	if !player.Valid() {
		return 0
	}
	var total uint16
	for _, score := range s.scores[player] {
		total += score
	}
	return total
}

// TurnDeadline returns the player's current turn deadline. The zero time
// means the player has never taken a turn.
func (s *Session) TurnDeadline(player Player) time.Time {
	if !player.Valid() {
		return time.Time{}
	}
	return s.turnEnds[player]
}

// FirstTurn returns which player started round zero.
func (s *Session) FirstTurn() Player {
	return s.firstTurn
}

// ExpiryTime returns the absolute abandonment deadline, or nil when no
// abandonment clock is running.
func (s *Session) ExpiryTime() *time.Time {
	if s.expiry == nil {
		return nil
	}
	t := *s.expiry
	return &t
}

// Expired reports whether the whole match is considered abandoned at now.
func (s *Session) Expired(now time.Time) bool {
	return s.expiry != nil && !now.Before(*s.expiry)
}

// Finished reports whether every round has concluded at now.
func (s *Session) Finished(now time.Time) bool {
	return s.settledRound(now) >= len(s.rounds)
}

// Outcome returns the match result for player 0 relative to player 1.
func (s *Session) Outcome() rating.Outcome {
	score0, score1 := s.TotalScore(Player0), s.TotalScore(Player1)
	switch {
	case score0 > score1:
		return rating.Win
	case score0 < score1:
		return rating.Loss
	default:
		return rating.Draw
	}
}

// Concluded reports whether match-end processing (rating application) has
// already run for this session.
func (s *Session) Concluded() bool {
	return s.concluded
}

// MarkConcluded records that match-end processing ran. It is set exactly
// once by the host after rating deltas are applied.
func (s *Session) MarkConcluded() {
	s.concluded = true
}

// settledRound returns the round index after accounting for a round whose
// turns have both concluded. At most one advance can be pending because
// starting a turn settles first.
func (s *Session) settledRound(now time.Time) int {
	if s.currentRound < len(s.rounds) && s.roundOver(now) {
		return s.currentRound + 1
	}
	return s.currentRound
}

// roundOver reports whether both players took their current-round turn and
// both turn deadlines have passed.
func (s *Session) roundOver(now time.Time) bool {
	return s.played[0] && s.played[1] &&
		!now.Before(s.turnEnds[0]) && !now.Before(s.turnEnds[1])
}

// settle applies a pending round advance.
func (s *Session) settle(now time.Time) {
	if round := s.settledRound(now); round != s.currentRound {
		s.currentRound = round
		s.played = [2]bool{}
	}
}

// starter returns which player opens a round. Round openers alternate from
// whoever took the first turn of the match.
func (s *Session) starter(round int) Player {
	if round%2 == 0 {
		return s.firstTurn
	}
	return s.firstTurn.Opponent()
}
