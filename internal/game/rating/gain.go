// Package rating computes competitive-score adjustments at match conclusion.
package rating

import "math"

// Outcome is the result of a match for the first player relative to the second.
type Outcome int

const (
	// Draw means both players finished with equal standing.
	Draw Outcome = iota
	// Win means the first player beat the second.
	Win
	// Loss means the first player lost to the second.
	Loss
)

// String returns a human-facing label for the outcome.
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Inverted returns the same result seen from the other player's side.
func (o Outcome) Inverted() Outcome {
	switch o {
	case Win:
		return Loss
	case Loss:
		return Win
	default:
		return Draw
	}
}

// Config carries the tunable scalars of the gain calculation.
type Config struct {
	// MinGain is the rating delta for a blowout victory.
	MinGain uint
	// MaxGain is the rating delta for the closest possible victory.
	MaxGain uint
	// Window is the score margin at which the gain saturates on either end.
	Window uint
}

// Gain returns the winner's rating delta for a concluded match.
//
// A draw yields zero. Otherwise the loser-minus-winner score margin is mapped
// linearly from [-window, +window] onto [minGain, maxGain], clamped at both
// ends, and rounded to the nearest integer. The closer the loser came to the
// winner, the larger the gain: a decisive result carries little rating
// information, a nail-biter carries the most.
func Gain(score1, score2 uint16, outcome Outcome, cfg Config) uint {
	if outcome == Draw {
		return 0
	}

	winner, loser := score1, score2
	if outcome == Loss {
		winner, loser = score2, score1
	}

	margin := float64(loser) - float64(winner)
	window := float64(cfg.Window)
	if window == 0 {
		if margin < 0 {
			return cfg.MinGain
		}
		return cfg.MaxGain
	}

	// Map margin from [-window, +window] to [0, 1], clamped.
	fraction := (margin + window) / (2 * window)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	gain := float64(cfg.MinGain) + fraction*(float64(cfg.MaxGain)-float64(cfg.MinGain))
	return uint(math.Round(gain))
}
