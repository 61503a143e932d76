package advisor

import (
	"yatzy-lite/dice"
	"yatzy-lite/yatzy"
)

// GameView is a read-only projection of the game state visible to a decider.
type GameView struct {
	Round     int
	RollsUsed int
	Faces     [yatzy.DiceCount]dice.Face
	Held      [yatzy.DiceCount]bool
	Open      []yatzy.Category
	Previews  map[yatzy.Category]int
	UpperSum  int
}

// ViewOf projects a game snapshot.
func ViewOf(snap yatzy.Snapshot) GameView {
	v := GameView{
		Round:     snap.Round,
		RollsUsed: snap.RollsUsed,
		Previews:  make(map[yatzy.Category]int, yatzy.CategoryCount),
		UpperSum:  snap.Totals.UpperSum,
	}
	for i, d := range snap.Dice {
		if i >= yatzy.DiceCount {
			break
		}
		v.Faces[i] = d.Face
		v.Held[i] = d.Held
	}
	for _, cs := range snap.Categories {
		if cs.Filled {
			continue
		}
		v.Open = append(v.Open, cs.Category)
		if cs.HasPreview {
			v.Previews[cs.Category] = cs.Preview
		}
	}
	return v
}

type DecisionKind byte

const (
	DecisionRoll  DecisionKind = 1
	DecisionScore DecisionKind = 2
)

var DecisionKindDictionary = map[DecisionKind]string{
	DecisionRoll:  "roll",
	DecisionScore: "score",
}

func (k DecisionKind) String() string {
	if name, ok := DecisionKindDictionary[k]; ok {
		return name
	}
	return "unknown"
}

// Decision is what a Decider returns. For DecisionRoll, Holds is the hold set
// to apply before rolling; for DecisionScore, Category is the slot to fill.
type Decision struct {
	Kind     DecisionKind
	Holds    [yatzy.DiceCount]bool
	Category yatzy.Category
}

// Decider is the interface every advisor implements.
type Decider interface {
	// Decide is called whenever the game awaits a move.
	Decide(view GameView) Decision
	// Name returns a human-readable identifier for debugging.
	Name() string
}
