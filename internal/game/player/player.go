// Package player holds the per-player projection the engine mutates at match
// end and serves to leaderboard consumers.
package player

import "github.com/Arshia001/FLServer-sub001/internal/game/rating"

// Profile is the public projection of a player shown on leaderboards and to
// opponents.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AvatarID string `json:"avatar_id"`
	Rating   uint   `json:"rating"`
	Wins     uint   `json:"wins"`
	Matches  uint   `json:"matches"`
}

// State is a player entity's durable state.
type State struct {
	Profile Profile `json:"profile"`
}

// ApplyMatchResult records a concluded match against the player's rating.
// The outcome is from this player's perspective: a win adds the gain, a loss
// removes it with the rating floored at zero, a draw changes nothing but the
// match count.
func (s *State) ApplyMatchResult(outcome rating.Outcome, gain uint) {
	s.Profile.Matches++
	switch outcome {
	case rating.Win:
		s.Profile.Wins++
		s.Profile.Rating += gain
	case rating.Loss:
		if s.Profile.Rating < gain {
			s.Profile.Rating = 0
		} else {
			s.Profile.Rating -= gain
		}
	}
}
