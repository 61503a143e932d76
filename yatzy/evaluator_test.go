package yatzy

import (
	"testing"

	"yatzy-lite/dice"
)

func faces(a, b, c, d, e int) [DiceCount]dice.Face {
	return [DiceCount]dice.Face{dice.Face(a), dice.Face(b), dice.Face(c), dice.Face(d), dice.Face(e)}
}

func TestScore_Rules(t *testing.T) {
	tests := []struct {
		name     string
		faces    [DiceCount]dice.Face
		category Category
		want     int
	}{
		{"aces counts only ones", faces(1, 1, 3, 1, 6), CategoryAces, 3},
		{"sixes", faces(6, 6, 2, 6, 1), CategorySixes, 18},
		{"fours absent", faces(1, 2, 3, 5, 6), CategoryFours, 0},
		{"yatzy of ones", faces(1, 1, 1, 1, 1), CategoryYatzy, 50},
		{"almost yatzy", faces(1, 1, 1, 1, 2), CategoryYatzy, 0},
		{"full house", faces(3, 3, 3, 2, 2), CategoryFullHouse, 25},
		{"four of a kind is not full house", faces(3, 3, 3, 3, 2), CategoryFullHouse, 0},
		{"yatzy is not full house", faces(4, 4, 4, 4, 4), CategoryFullHouse, 0},
		{"small straight low run with gap", faces(1, 2, 3, 4, 6), CategorySmallStraight, 30},
		{"small straight with duplicate", faces(3, 4, 5, 6, 3), CategorySmallStraight, 30},
		{"small straight broken", faces(1, 2, 3, 5, 6), CategorySmallStraight, 0},
		{"large straight high", faces(2, 3, 4, 5, 6), CategoryLargeStraight, 40},
		{"large straight low unordered", faces(5, 1, 4, 2, 3), CategoryLargeStraight, 40},
		{"large straight needs five", faces(1, 2, 3, 4, 6), CategoryLargeStraight, 0},
		{"large straight also small", faces(2, 3, 4, 5, 6), CategorySmallStraight, 30},
		{"three of a kind sums all dice", faces(5, 5, 5, 5, 5), CategoryThreeOfAKind, 25},
		{"three of a kind", faces(2, 2, 2, 4, 6), CategoryThreeOfAKind, 16},
		{"three of a kind missing", faces(2, 2, 3, 4, 6), CategoryThreeOfAKind, 0},
		{"four of a kind", faces(6, 6, 6, 6, 1), CategoryFourOfAKind, 25},
		{"four of a kind missing", faces(6, 6, 6, 1, 1), CategoryFourOfAKind, 0},
		{"chance", faces(1, 3, 5, 6, 6), CategoryChance, 21},
		{"unset dice score nothing", faces(0, 0, 0, 0, 0), CategoryYatzy, 0},
		{"unset dice are not a pair", faces(0, 0, 3, 3, 3), CategoryFullHouse, 0},
		{"unknown category", faces(6, 6, 6, 6, 6), Category(99), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.faces, tt.category); got != tt.want {
				t.Fatalf("Score(%v, %s) = %d, want %d", tt.faces, tt.category, got, tt.want)
			}
		})
	}
}

func TestScore_ChanceIsSumForAllRolls(t *testing.T) {
	forEachRoll(func(f [DiceCount]dice.Face) {
		sum := 0
		for _, v := range f {
			sum += int(v)
		}
		if got := Score(f, CategoryChance); got != sum {
			t.Fatalf("Score(%v, chance) = %d, want %d", f, got, sum)
		}
	})
}

func TestScoreAll_MatchesScore(t *testing.T) {
	forEachRoll(func(f [DiceCount]dice.Face) {
		all := ScoreAll(f)
		for _, c := range AllCategories {
			if all[c] != Score(f, c) {
				t.Fatalf("ScoreAll(%v)[%s] = %d, Score = %d", f, c, all[c], Score(f, c))
			}
		}
	})
}

func TestScore_UpperSectionNeverExceedsFiveTimesFace(t *testing.T) {
	forEachRoll(func(f [DiceCount]dice.Face) {
		for i, c := range AllCategories[:6] {
			if got := Score(f, c); got > 5*(i+1) || got%(i+1) != 0 {
				t.Fatalf("Score(%v, %s) = %d out of range", f, c, got)
			}
		}
	})
}

func forEachRoll(fn func([DiceCount]dice.Face)) {
	var f [DiceCount]dice.Face
	var walk func(int)
	walk = func(i int) {
		if i == DiceCount {
			fn(f)
			return
		}
		for _, face := range dice.AllFaces {
			f[i] = face
			walk(i + 1)
		}
	}
	walk(0)
}
