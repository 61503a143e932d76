package replay

import "yatzy-lite/protocol"

// GameSpec describes a complete or partial game to replay. Faces, when set,
// script every die drawn in order and take precedence over Seed.
type GameSpec struct {
	Seed    *int64       `json:"seed,omitempty"`
	Faces   []int        `json:"faces,omitempty"`
	Actions []ActionSpec `json:"actions"`
}

// ActionSpec is one player step: ROLL, HOLD (toggles Die) or SCORE (commits Category).
type ActionSpec struct {
	Type     string `json:"type"`
	Die      int    `json:"die,omitempty"`
	Category string `json:"category,omitempty"`
}

type ReplayTape struct {
	TapeVersion int           `json:"tape_version"`
	GameID      string        `json:"game_id"`
	Steps       int           `json:"steps"`
	Final       FinalState    `json:"final"`
	Events      []ReplayEvent `json:"events"`
}

// FinalState is where the game stood after the last action.
type FinalState struct {
	Round    int           `json:"round"`
	Phase    string        `json:"phase"`
	GameOver bool          `json:"game_over"`
	Totals   Totals        `json:"totals"`
	Scored   []ScoredRound `json:"scored"`
}

type Totals struct {
	UpperSum   int `json:"upper_sum"`
	Bonus      int `json:"bonus"`
	LowerSum   int `json:"lower_sum"`
	GrandTotal int `json:"grand_total"`
}

type ScoredRound struct {
	Round    int    `json:"round"`
	Category string `json:"category"`
	Points   int    `json:"points"`
}

type ReplayEvent struct {
	Type        string                   `json:"type"`
	Seq         uint64                   `json:"seq"`
	Value       *protocol.ServerEnvelope `json:"value,omitempty"`
	EnvelopeB64 string                   `json:"envelope_b64,omitempty"`
}
