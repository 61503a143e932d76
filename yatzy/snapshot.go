package yatzy

import "yatzy-lite/dice"

type DieSnapshot struct {
	Face dice.Face
	Held bool
}

type CategorySnapshot struct {
	Category Category
	Filled   bool
	Score    int // committed score, valid when Filled

	// Preview is what the current dice would score; valid when HasPreview.
	Preview    int
	HasPreview bool
}

// Snapshot is everything a presentation layer needs to draw the game.
type Snapshot struct {
	Round     int
	Phase     Phase
	RollsUsed int
	RollsLeft int
	GameOver  bool

	Dice       []DieSnapshot
	Categories []CategorySnapshot
	Totals     Totals
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Round:     g.round,
		Phase:     g.phaseLocked(),
		RollsUsed: g.rollsUsed,
		RollsLeft: MaxRolls - g.rollsUsed,
		GameOver:  g.card.Complete(),
		Totals:    g.card.Totals(),
	}
	if s.GameOver {
		s.RollsLeft = 0
	}

	for i := range g.faces {
		s.Dice = append(s.Dice, DieSnapshot{Face: g.faces[i], Held: g.held[i]})
	}

	previews := g.previewsLocked()
	for _, c := range AllCategories {
		cs := CategorySnapshot{Category: c}
		if score, ok := g.card.Score(c); ok {
			cs.Filled = true
			cs.Score = score
		} else if p, ok := previews[c]; ok {
			cs.Preview = p
			cs.HasPreview = true
		}
		s.Categories = append(s.Categories, cs)
	}
	return s
}

// Faces returns the dice faces of the snapshot in order.
func (s Snapshot) Faces() dice.FaceList {
	out := make(dice.FaceList, len(s.Dice))
	for i, d := range s.Dice {
		out[i] = d.Face
	}
	return out
}

// Category looks up the snapshot entry for c.
func (s Snapshot) Category(c Category) (CategorySnapshot, bool) {
	for _, cs := range s.Categories {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategorySnapshot{}, false
}
