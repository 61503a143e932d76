package advisor

import (
	"fmt"

	"yatzy-lite/yatzy"
)

// maxAutoplaySteps bounds Autoplay: thirteen rounds of at most three rolls,
// five hold toggles per roll and one commit.
const maxAutoplaySteps = yatzy.TotalRounds * (yatzy.MaxRolls*(yatzy.DiceCount+1) + 1)

// Apply carries out one decision on g. A roll decision first aligns the hold
// flags with d.Holds (only possible once the round has been rolled).
func Apply(g *yatzy.Game, d Decision) error {
	switch d.Kind {
	case DecisionRoll:
		if g.RollsUsed() > 0 {
			_, held := g.Dice()
			for i := range held {
				if held[i] == d.Holds[i] {
					continue
				}
				if _, err := g.ToggleHold(i); err != nil {
					return fmt.Errorf("hold die %d: %w", i, err)
				}
			}
		}
		_, err := g.Roll()
		return err
	case DecisionScore:
		_, err := g.CommitScore(d.Category)
		return err
	default:
		return fmt.Errorf("unknown decision kind %d", d.Kind)
	}
}

// Autoplay lets d play g to the end and returns the final totals.
func Autoplay(g *yatzy.Game, d Decider) (yatzy.Totals, error) {
	for step := 0; step < maxAutoplaySteps; step++ {
		if g.IsOver() {
			return g.Totals(), nil
		}
		decision := d.Decide(ViewOf(g.Snapshot()))
		if err := Apply(g, decision); err != nil {
			return g.Totals(), fmt.Errorf("%s: step %d %s: %w", d.Name(), step, decision.Kind, err)
		}
	}
	if g.IsOver() {
		return g.Totals(), nil
	}
	return g.Totals(), yatzy.ErrInvalidState("autoplay did not finish")
}
