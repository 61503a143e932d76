package replay

import "fmt"

// Failure reasons reported in ReplayError.Reason.
const (
	ReasonInvalidSpec     = "invalid_spec"
	ReasonInvalidAction   = "invalid_action"
	ReasonInvalidCategory = "invalid_category"
	ReasonRollLimit       = "roll_limit"
	ReasonHoldBeforeRoll  = "hold_before_roll"
	ReasonInvalidDie      = "invalid_die"
	ReasonCategoryFilled  = "category_filled"
	ReasonNoRollYet       = "no_roll_yet"
	ReasonGameOver        = "game_over"
	ReasonFacesExhausted  = "faces_exhausted"
	ReasonEncodeFailed    = "encode_failed"
)

type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState describes the game at the failing step.
type ExpectedState struct {
	Round          int      `json:"round"`
	Phase          string   `json:"phase"`
	RollsUsed      int      `json:"rolls_used"`
	CanRoll        bool     `json:"can_roll"`
	CanHold        bool     `json:"can_hold"`
	OpenCategories []string `json:"open_categories,omitempty"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}
