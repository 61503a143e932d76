package replay

import "yatzy-lite/yatzy"

// The wire shapes are what the browser replay viewer reads: camelCase, with
// the game's outcome up front so the viewer can render a score sheet before
// decoding a single envelope.

type WireReplayTape struct {
	TapeVersion int               `json:"tapeVersion"`
	GameID      string            `json:"gameId"`
	Steps       int               `json:"steps"`
	GameOver    bool              `json:"gameOver"`
	Round       int               `json:"round"`
	Phase       string            `json:"phase"`
	Totals      WireTotals        `json:"totals"`
	Scored      []WireScoredRound `json:"scored"`
	Events      []WireReplayEvent `json:"events"`
}

type WireTotals struct {
	UpperSum    int  `json:"upperSum"`
	Bonus       int  `json:"bonus"`
	BonusEarned bool `json:"bonusEarned"`
	LowerSum    int  `json:"lowerSum"`
	GrandTotal  int  `json:"grandTotal"`
}

type WireScoredRound struct {
	Round    int    `json:"round"`
	Category string `json:"category"`
	Points   int    `json:"points"`
}

type WireReplayEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	EnvelopeB64 string `json:"envelopeB64"`
}

// WireReplayError is a ReplayError for the viewer. Step is 1-based so it
// can be shown as is; 0 means the spec itself was rejected.
type WireReplayError struct {
	Step     int                `json:"step"`
	Reason   string             `json:"reason"`
	Message  string             `json:"message"`
	Expected *WireExpectedState `json:"expected,omitempty"`
}

type WireExpectedState struct {
	Round          int      `json:"round"`
	Phase          string   `json:"phase"`
	RollsUsed      int      `json:"rollsUsed"`
	RollsLeft      int      `json:"rollsLeft"`
	CanRoll        bool     `json:"canRoll"`
	CanHold        bool     `json:"canHold"`
	OpenCategories []string `json:"openCategories"`
}

func ToWireReplayTape(tape *ReplayTape) *WireReplayTape {
	if tape == nil {
		return nil
	}
	t := tape.Final.Totals
	out := &WireReplayTape{
		TapeVersion: tape.TapeVersion,
		GameID:      tape.GameID,
		Steps:       tape.Steps,
		GameOver:    tape.Final.GameOver,
		Round:       tape.Final.Round,
		Phase:       tape.Final.Phase,
		Totals: WireTotals{
			UpperSum:    t.UpperSum,
			Bonus:       t.Bonus,
			BonusEarned: t.Bonus > 0,
			LowerSum:    t.LowerSum,
			GrandTotal:  t.GrandTotal,
		},
		Scored: make([]WireScoredRound, 0, len(tape.Final.Scored)),
		Events: make([]WireReplayEvent, 0, len(tape.Events)),
	}
	for _, r := range tape.Final.Scored {
		out.Scored = append(out.Scored, WireScoredRound(r))
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireReplayEvent{
			Type:        e.Type,
			Seq:         e.Seq,
			EnvelopeB64: e.EnvelopeB64,
		})
	}
	return out
}

func ToWireReplayError(e *ReplayError) *WireReplayError {
	if e == nil {
		return nil
	}
	out := &WireReplayError{
		Step:    int(e.StepIndex) + 1,
		Reason:  e.Reason,
		Message: e.Message,
	}
	if out.Step < 0 {
		out.Step = 0
	}
	if x := e.Expected; x != nil {
		out.Expected = &WireExpectedState{
			Round:          x.Round,
			Phase:          x.Phase,
			RollsUsed:      x.RollsUsed,
			RollsLeft:      rollsLeft(x.RollsUsed),
			CanRoll:        x.CanRoll,
			CanHold:        x.CanHold,
			OpenCategories: append([]string{}, x.OpenCategories...),
		}
	}
	return out
}

func rollsLeft(used int) int {
	if used >= yatzy.MaxRolls {
		return 0
	}
	return yatzy.MaxRolls - used
}
