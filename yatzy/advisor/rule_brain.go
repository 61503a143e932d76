package advisor

import (
	"math/rand"

	"yatzy-lite/dice"
	"yatzy-lite/yatzy"
)

// potential is a rough average of what each category yields over a game.
// Scoring below it means spending the category cheaply.
var potential = [yatzy.CategoryCount]float64{
	yatzy.CategoryAces:          2,
	yatzy.CategoryTwos:          5,
	yatzy.CategoryThrees:        8,
	yatzy.CategoryFours:         11,
	yatzy.CategoryFives:         14,
	yatzy.CategorySixes:         17,
	yatzy.CategoryThreeOfAKind:  18,
	yatzy.CategoryFourOfAKind:   10,
	yatzy.CategoryFullHouse:     18,
	yatzy.CategorySmallStraight: 22,
	yatzy.CategoryLargeStraight: 24,
	yatzy.CategoryYatzy:         12,
	yatzy.CategoryChance:        22,
}

// RuleBrain makes decisions based on a Profile with tunable parameters.
type RuleBrain struct {
	Profile Profile
	rng     *rand.Rand
}

// NewRuleBrain creates a RuleBrain from a profile definition.
func NewRuleBrain(profile Profile, seed int64) *RuleBrain {
	return &RuleBrain{
		Profile: profile,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.Profile.Name }

// Decide implements Decider.
func (b *RuleBrain) Decide(view GameView) Decision {
	if len(view.Open) == 0 {
		return Decision{Kind: DecisionRoll}
	}
	if view.RollsUsed == 0 {
		return Decision{Kind: DecisionRoll}
	}

	scores := yatzy.ScoreAll(view.Faces)
	best := b.pickCategory(view, scores)
	if view.RollsUsed >= yatzy.MaxRolls {
		return Decision{Kind: DecisionScore, Category: best}
	}

	// Made hands with fixed payouts are banked, except a small straight a
	// greedy player may push toward a large one.
	for _, c := range []yatzy.Category{yatzy.CategoryYatzy, yatzy.CategoryLargeStraight, yatzy.CategoryFullHouse} {
		if isOpen(view.Open, c) && scores[c] > 0 {
			return Decision{Kind: DecisionScore, Category: c}
		}
	}
	if isOpen(view.Open, yatzy.CategorySmallStraight) && scores[yatzy.CategorySmallStraight] > 0 {
		if !isOpen(view.Open, yatzy.CategoryLargeStraight) || b.noisy(b.Profile.Greed) < 0.5 {
			return Decision{Kind: DecisionScore, Category: yatzy.CategorySmallStraight}
		}
	}

	// Noise: occasionally settle for the current best.
	if b.rng.Float64() < b.Profile.Randomness*0.3 {
		return Decision{Kind: DecisionScore, Category: best}
	}

	return Decision{Kind: DecisionRoll, Holds: b.keepPlan(view)}
}

// pickCategory chooses the open category with the best value relative to
// what that category usually yields.
func (b *RuleBrain) pickCategory(view GameView, scores [yatzy.CategoryCount]int) yatzy.Category {
	best := view.Open[0]
	bestValue := 0.0
	for i, c := range view.Open {
		value := float64(scores[c]) - 0.5*potential[c]
		if c.Upper() {
			face := int(c) + 1
			// three of a face is par for the upper bonus
			if scores[c] >= 3*face {
				value += 0.25 * float64(face)
			}
			if view.UpperSum < yatzy.BonusThreshold && view.UpperSum+scores[c] >= yatzy.BonusThreshold {
				value += yatzy.BonusValue
			}
		}
		if c == yatzy.CategoryChance {
			value -= 0.4 * potential[c]
		}
		if i == 0 || value > bestValue {
			best, bestValue = c, value
		}
	}
	return best
}

// keepPlan picks the dice to hold for the next roll: a run toward a straight
// when one is open and promising, otherwise the largest group of equal faces.
func (b *RuleBrain) keepPlan(view GameView) [yatzy.DiceCount]bool {
	var holds [yatzy.DiceCount]bool
	counts := dice.FaceList(view.Faces[:]).Counts()

	groupFace, groupSize := dice.FaceUnset, 0
	for _, f := range dice.AllFaces {
		if counts[f] >= groupSize {
			groupFace, groupSize = f, counts[f]
		}
	}

	straightOpen := isOpen(view.Open, yatzy.CategorySmallStraight) || isOpen(view.Open, yatzy.CategoryLargeStraight)
	if run := longestRun(counts); straightOpen && len(run) >= 3 && groupSize <= 2 {
		taken := make(map[dice.Face]bool, len(run))
		for _, f := range run {
			taken[f] = false
		}
		for i, f := range view.Faces {
			if done, ok := taken[f]; ok && !done {
				holds[i] = true
				taken[f] = true
			}
		}
		return holds
	}

	if groupSize < 2 {
		// nothing worth keeping but a high die for chance / upper
		if b.noisy(b.Profile.Greed) > 0.5 {
			return holds
		}
		for i, f := range view.Faces {
			if f == dice.FaceSix {
				holds[i] = true
			}
		}
		return holds
	}
	for i, f := range view.Faces {
		if f == groupFace {
			holds[i] = true
		}
	}
	return holds
}

// noisy perturbs v by the profile's randomness.
func (b *RuleBrain) noisy(v float64) float64 {
	return clamp01(v + (b.rng.Float64()-0.5)*b.Profile.Randomness*0.4)
}

// longestRun returns the longest sequence of consecutive faces present.
func longestRun(counts [dice.Sides + 1]int) []dice.Face {
	var best, cur []dice.Face
	for _, f := range dice.AllFaces {
		if counts[f] > 0 {
			cur = append(cur, f)
			if len(cur) > len(best) {
				best = append([]dice.Face{}, cur...)
			}
			continue
		}
		cur = cur[:0]
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isOpen(open []yatzy.Category, target yatzy.Category) bool {
	for _, c := range open {
		if c == target {
			return true
		}
	}
	return false
}
