package yatzy

import "fmt"

// ScoreCard holds one optional score per category. Entries are write-once.
type ScoreCard struct {
	scores [CategoryCount]int
	filled [CategoryCount]bool
}

// Totals are derived from a ScoreCard on demand and never stored.
type Totals struct {
	UpperSum   int
	Bonus      int
	LowerSum   int
	GrandTotal int
}

// Fill records points for c. A filled category is never overwritten.
func (sc *ScoreCard) Fill(c Category, points int) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCategory, byte(c))
	}
	if sc.filled[c] {
		return fmt.Errorf("%w: %s", ErrCategoryAlreadyFilled, c)
	}
	if points < 0 {
		return ErrInvalidState(fmt.Sprintf("negative score %d for %s", points, c))
	}
	sc.scores[c] = points
	sc.filled[c] = true
	return nil
}

// Score returns the committed score of c and whether c is filled.
func (sc ScoreCard) Score(c Category) (int, bool) {
	if !c.Valid() || !sc.filled[c] {
		return 0, false
	}
	return sc.scores[c], true
}

func (sc ScoreCard) Filled(c Category) bool {
	return c.Valid() && sc.filled[c]
}

func (sc ScoreCard) FilledCount() int {
	n := 0
	for _, f := range sc.filled {
		if f {
			n++
		}
	}
	return n
}

// Complete reports whether every category has a score.
func (sc ScoreCard) Complete() bool {
	return sc.FilledCount() == CategoryCount
}

// Open lists the unfilled categories in display order.
func (sc ScoreCard) Open() []Category {
	out := make([]Category, 0, CategoryCount)
	for _, c := range AllCategories {
		if !sc.filled[c] {
			out = append(out, c)
		}
	}
	return out
}

func (sc ScoreCard) Totals() Totals {
	var t Totals
	for _, c := range AllCategories {
		if !sc.filled[c] {
			continue
		}
		if c.Upper() {
			t.UpperSum += sc.scores[c]
		} else {
			t.LowerSum += sc.scores[c]
		}
	}
	t.Bonus = BonusFor(t.UpperSum)
	t.GrandTotal = t.UpperSum + t.Bonus + t.LowerSum
	return t
}

// BonusFor returns the upper-section bonus earned by upperSum.
func BonusFor(upperSum int) int {
	if upperSum >= BonusThreshold {
		return BonusValue
	}
	return 0
}
