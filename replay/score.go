package replay

import (
	"fmt"

	"yatzy-lite/dice"
	"yatzy-lite/yatzy"
)

// ScoreFaces scores one roll against every category, keyed by category name.
// It backs the viewer's score sheet when a tape is paused mid-round.
func ScoreFaces(faces []int) (map[string]int, error) {
	if len(faces) != yatzy.DiceCount {
		return nil, &ReplayError{
			StepIndex: -1,
			Reason:    ReasonInvalidSpec,
			Message:   fmt.Sprintf("want %d faces, got %d", yatzy.DiceCount, len(faces)),
		}
	}
	var roll [yatzy.DiceCount]dice.Face
	for i, n := range faces {
		f, err := dice.FaceFromInt(n)
		if err != nil {
			return nil, &ReplayError{StepIndex: -1, Reason: ReasonInvalidSpec, Message: err.Error()}
		}
		roll[i] = f
	}
	all := yatzy.ScoreAll(roll)
	out := make(map[string]int, yatzy.CategoryCount)
	for _, c := range yatzy.AllCategories {
		out[c.String()] = all[c]
	}
	return out, nil
}
