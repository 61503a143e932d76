package replay

import (
	"fmt"
	"strings"

	"yatzy-lite/dice"
	"yatzy-lite/yatzy"
)

// defaultSeed keeps seedless specs reproducible.
const defaultSeed int64 = 1

type actionKind byte

const (
	actionRoll actionKind = iota + 1
	actionHold
	actionScore
)

type normalizedAction struct {
	kind     actionKind
	die      int
	category yatzy.Category
}

type normalizedSpec struct {
	seed    int64
	faces   []dice.Face
	actions []normalizedAction
}

func normalizeSpec(spec GameSpec) (normalizedSpec, error) {
	var out normalizedSpec
	out.seed = defaultSeed
	if spec.Seed != nil {
		if *spec.Seed == 0 {
			return out, &ReplayError{StepIndex: -1, Reason: ReasonInvalidSpec, Message: "seed 0 is not reproducible"}
		}
		out.seed = *spec.Seed
	}

	if len(spec.Faces) > 0 {
		out.faces = make([]dice.Face, 0, len(spec.Faces))
		for i, n := range spec.Faces {
			f, err := dice.FaceFromInt(n)
			if err != nil {
				return out, &ReplayError{StepIndex: -1, Reason: ReasonInvalidSpec, Message: fmt.Sprintf("faces[%d]: %v", i, err)}
			}
			out.faces = append(out.faces, f)
		}
	}

	if len(spec.Actions) == 0 {
		return out, &ReplayError{StepIndex: -1, Reason: ReasonInvalidSpec, Message: "at least one action is required"}
	}

	out.actions = make([]normalizedAction, 0, len(spec.Actions))
	for i, a := range spec.Actions {
		kind, err := parseActionType(a.Type)
		if err != nil {
			return out, &ReplayError{StepIndex: int32(i), Reason: ReasonInvalidAction, Message: err.Error()}
		}
		na := normalizedAction{kind: kind, die: a.Die}
		if kind == actionScore {
			c, err := yatzy.ParseCategory(a.Category)
			if err != nil {
				return out, &ReplayError{StepIndex: int32(i), Reason: ReasonInvalidCategory, Message: err.Error()}
			}
			na.category = c
		}
		out.actions = append(out.actions, na)
	}
	return out, nil
}

func parseActionType(raw string) (actionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ROLL":
		return actionRoll, nil
	case "HOLD", "TOGGLE_HOLD":
		return actionHold, nil
	case "SCORE", "COMMIT":
		return actionScore, nil
	default:
		return 0, fmt.Errorf("unknown action type %q", raw)
	}
}

func (k actionKind) String() string {
	switch k {
	case actionRoll:
		return "ROLL"
	case actionHold:
		return "HOLD"
	case actionScore:
		return "SCORE"
	default:
		return "UNKNOWN"
	}
}
