package domain

import "errors"

// Difficulty is the learner's perceived difficulty of an answered card.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ErrInvalidDifficulty is returned when a difficulty value is not one of
// easy, medium, or hard.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Valid reports whether the difficulty is one of the allowed values.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// MaxResponseTimeSec bounds the accepted per-answer response time.
const MaxResponseTimeSec = 300

// Review is a single answer event against a card.
type Review struct {
	Correct         bool       `json:"correct"`
	Difficulty      Difficulty `json:"difficulty"`
	ResponseTimeSec float64    `json:"response_time_sec"`
}
