package yatzy

import (
	"fmt"
	"strings"
)

// Game constants.
const (
	DiceCount      = 5
	MaxRolls       = 3
	TotalRounds    = 13
	BonusThreshold = 63
	BonusValue     = 35

	FullHousePoints     = 25
	SmallStraightPoints = 30
	LargeStraightPoints = 40
	YatzyPoints         = 50
)

// Phase is where the current round stands.
type Phase byte

const (
	PhaseAwaitingRoll  Phase = 0 // no roll yet this round
	PhaseRolling       Phase = 1 // one or two rolls used
	PhaseLastRoll      Phase = 2 // three rolls used, must score
	PhaseRoundComplete Phase = 3 // a category was just scored
	PhaseGameOver      Phase = 4
)

var PhaseDictionary = map[Phase]string{
	PhaseAwaitingRoll:  "awaiting_roll",
	PhaseRolling:       "rolling",
	PhaseLastRoll:      "last_roll",
	PhaseRoundComplete: "round_complete",
	PhaseGameOver:      "game_over",
}

func (p Phase) String() string {
	if name, ok := PhaseDictionary[p]; ok {
		return name
	}
	return "unknown"
}

// Category is one of the thirteen scorecard slots, in display order.
type Category byte

const (
	CategoryAces Category = iota
	CategoryTwos
	CategoryThrees
	CategoryFours
	CategoryFives
	CategorySixes
	CategoryThreeOfAKind
	CategoryFourOfAKind
	CategoryFullHouse
	CategorySmallStraight
	CategoryLargeStraight
	CategoryYatzy
	CategoryChance

	CategoryCount = int(CategoryChance) + 1
)

var CategoryDictionary = map[Category]string{
	CategoryAces:          "aces",
	CategoryTwos:          "twos",
	CategoryThrees:        "threes",
	CategoryFours:         "fours",
	CategoryFives:         "fives",
	CategorySixes:         "sixes",
	CategoryThreeOfAKind:  "three_of_a_kind",
	CategoryFourOfAKind:   "four_of_a_kind",
	CategoryFullHouse:     "full_house",
	CategorySmallStraight: "small_straight",
	CategoryLargeStraight: "large_straight",
	CategoryYatzy:         "yatzy",
	CategoryChance:        "chance",
}

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryAces, CategoryTwos, CategoryThrees, CategoryFours, CategoryFives, CategorySixes,
	CategoryThreeOfAKind, CategoryFourOfAKind, CategoryFullHouse,
	CategorySmallStraight, CategoryLargeStraight, CategoryYatzy, CategoryChance,
}

func (c Category) String() string {
	if name, ok := CategoryDictionary[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", byte(c))
}

// Valid reports whether c is one of the thirteen categories.
func (c Category) Valid() bool {
	return int(c) < CategoryCount
}

// Upper reports whether c belongs to the upper section (Aces..Sixes).
func (c Category) Upper() bool {
	return c <= CategorySixes
}

// ParseCategory resolves a wire name such as "full_house". Matching is case
// insensitive and accepts '-' or ' ' in place of '_'.
func ParseCategory(raw string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	// legacy scorecard field ids carry a suffix ("acesField")
	key = strings.TrimSuffix(key, "field")
	for c, name := range CategoryDictionary {
		if name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}
