package yatzy

import (
	"errors"
	"fmt"
	"sync"

	"yatzy-lite/dice"
)

// Game is one single-player Yatzy game: thirteen rounds of up to three rolls
// each, ending in one category being scored.
//
// Every Game owns its dice source and scorecard; separate games share no
// mutable state.
type Game struct {
	cfg Config
	src dice.Source

	mu sync.Mutex

	// round state
	round     int
	rollsUsed int
	faces     [DiceCount]dice.Face
	held      [DiceCount]bool

	card    ScoreCard
	history []RoundRecord
}

// RoundRecord is what was scored at the end of a round.
type RoundRecord struct {
	Round    int
	Category Category
	Points   int
	Faces    [DiceCount]dice.Face
}

// CommitResult describes a successful CommitScore.
type CommitResult struct {
	Round    int // round that was just completed
	Category Category
	Points   int
	Phase    Phase // PhaseRoundComplete or PhaseGameOver
	Totals   Totals
}

// Moves is a pure projection of what the current state allows.
type Moves struct {
	CanRoll  bool
	CanHold  bool
	Scorable []Category
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Game{
		cfg:   cfg,
		src:   cfg.source(),
		round: 1,
	}, nil
}

// Roll rerolls every unheld die and returns the number of rolls used this
// round. The dice source is consulted exactly once per unheld die.
func (g *Game) Roll() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.card.Complete() {
		return g.rollsUsed, ErrGameOver
	}
	if g.rollsUsed >= MaxRolls {
		return g.rollsUsed, ErrRollLimitExceeded
	}

	next, err := g.drawLocked()
	if err != nil {
		return g.rollsUsed, err
	}
	g.faces = next
	g.rollsUsed++
	return g.rollsUsed, nil
}

// drawLocked computes the next faces without touching state, so a failing
// source leaves the round as it was.
func (g *Game) drawLocked() (next [DiceCount]dice.Face, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, dice.ErrSourceExhausted) {
				err = e
				return
			}
			panic(r)
		}
	}()
	next = g.faces
	for i := range next {
		if g.held[i] {
			continue
		}
		next[i] = dice.RollFace(g.src)
	}
	return next, nil
}

// ToggleHold flips the hold flag of die i and returns its new value.
func (g *Game) ToggleHold(i int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.card.Complete() {
		return false, ErrGameOver
	}
	if i < 0 || i >= DiceCount {
		return false, fmt.Errorf("%w: %d", ErrInvalidDieIndex, i)
	}
	if g.rollsUsed == 0 {
		return false, ErrHoldBeforeRoll
	}
	g.held[i] = !g.held[i]
	return g.held[i], nil
}

// PreviewScore returns what c would score with the current dice without
// committing anything.
func (g *Game) PreviewScore(c Category) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkScorableLocked(c); err != nil {
		return 0, err
	}
	return Score(g.faces, c), nil
}

// CommitScore writes the score for c permanently and starts the next round.
// A zero score is always a legal outcome.
func (g *Game) CommitScore(c Category) (CommitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkScorableLocked(c); err != nil {
		return CommitResult{}, err
	}
	points := Score(g.faces, c)
	if err := g.card.Fill(c, points); err != nil {
		return CommitResult{}, err
	}
	g.history = append(g.history, RoundRecord{
		Round:    g.round,
		Category: c,
		Points:   points,
		Faces:    g.faces,
	})

	res := CommitResult{
		Round:    g.round,
		Category: c,
		Points:   points,
		Phase:    PhaseRoundComplete,
	}
	g.nextRoundLocked()
	if g.card.Complete() {
		res.Phase = PhaseGameOver
	}
	res.Totals = g.card.Totals()
	return res, nil
}

func (g *Game) checkScorableLocked(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCategory, byte(c))
	}
	if g.card.Complete() {
		return ErrGameOver
	}
	if g.card.Filled(c) {
		return fmt.Errorf("%w: %s", ErrCategoryAlreadyFilled, c)
	}
	if g.rollsUsed == 0 {
		return ErrNoRollYet
	}
	return nil
}

func (g *Game) nextRoundLocked() {
	g.rollsUsed = 0
	g.faces = [DiceCount]dice.Face{}
	g.held = [DiceCount]bool{}
	g.round++
}

// Totals recomputes the derived sums from the scorecard.
func (g *Game) Totals() Totals {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.card.Totals()
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phaseLocked()
}

func (g *Game) phaseLocked() Phase {
	switch {
	case g.card.Complete():
		return PhaseGameOver
	case g.rollsUsed == 0:
		return PhaseAwaitingRoll
	case g.rollsUsed < MaxRolls:
		return PhaseRolling
	default:
		return PhaseLastRoll
	}
}

// Round returns the current round number, 1..13, or 14 once the game is over.
func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

func (g *Game) RollsUsed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rollsUsed
}

func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.card.Complete()
}

// Dice returns the current faces and hold flags.
func (g *Game) Dice() ([DiceCount]dice.Face, [DiceCount]bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faces, g.held
}

func (g *Game) ScoreCard() ScoreCard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.card
}

func (g *Game) OpenCategories() []Category {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.card.Open()
}

// Previews scores the current dice against every open category. It is empty
// before the first roll of a round.
func (g *Game) Previews() map[Category]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.previewsLocked()
}

func (g *Game) previewsLocked() map[Category]int {
	out := make(map[Category]int, CategoryCount)
	if g.rollsUsed == 0 || g.card.Complete() {
		return out
	}
	all := ScoreAll(g.faces)
	for _, c := range g.card.Open() {
		out[c] = all[c]
	}
	return out
}

// LegalMoves is a pure projection of current state.
func (g *Game) LegalMoves() Moves {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.movesLocked()
}

func (g *Game) movesLocked() Moves {
	if g.card.Complete() {
		return Moves{}
	}
	m := Moves{
		CanRoll: g.rollsUsed < MaxRolls,
		CanHold: g.rollsUsed > 0,
	}
	if g.rollsUsed > 0 {
		m.Scorable = g.card.Open()
	}
	return m
}

// History returns the scored rounds in order.
func (g *Game) History() []RoundRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]RoundRecord{}, g.history...)
}
