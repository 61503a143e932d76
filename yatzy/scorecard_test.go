package yatzy

import (
	"errors"
	"testing"
)

func TestScoreCard_BonusThreshold(t *testing.T) {
	tests := []struct {
		name      string
		aces      int
		wantUpper int
		wantBonus int
	}{
		{name: "exactly 63", aces: 3, wantUpper: 63, wantBonus: BonusValue},
		{name: "one short", aces: 2, wantUpper: 62, wantBonus: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sc ScoreCard
			mustFill(t, &sc, CategoryAces, tt.aces)
			mustFill(t, &sc, CategoryTwos, 6)
			mustFill(t, &sc, CategoryThrees, 9)
			mustFill(t, &sc, CategoryFours, 12)
			mustFill(t, &sc, CategoryFives, 15)
			mustFill(t, &sc, CategorySixes, 18)
			mustFill(t, &sc, CategoryChance, 20)

			totals := sc.Totals()
			if totals.UpperSum != tt.wantUpper {
				t.Fatalf("UpperSum = %d, want %d", totals.UpperSum, tt.wantUpper)
			}
			if totals.Bonus != tt.wantBonus {
				t.Fatalf("Bonus = %d, want %d", totals.Bonus, tt.wantBonus)
			}
			if totals.LowerSum != 20 {
				t.Fatalf("LowerSum = %d, want 20", totals.LowerSum)
			}
			if totals.GrandTotal != tt.wantUpper+tt.wantBonus+20 {
				t.Fatalf("GrandTotal = %d", totals.GrandTotal)
			}
		})
	}
}

func TestScoreCard_IsWriteOnce(t *testing.T) {
	var sc ScoreCard
	mustFill(t, &sc, CategoryYatzy, 50)

	err := sc.Fill(CategoryYatzy, 0)
	if !errors.Is(err, ErrCategoryAlreadyFilled) {
		t.Fatalf("expected ErrCategoryAlreadyFilled, got %v", err)
	}
	if got, ok := sc.Score(CategoryYatzy); !ok || got != 50 {
		t.Fatalf("score changed after rejected fill: %d %v", got, ok)
	}
}

func TestScoreCard_OpenAndComplete(t *testing.T) {
	var sc ScoreCard
	if len(sc.Open()) != CategoryCount {
		t.Fatalf("expected %d open categories, got %d", CategoryCount, len(sc.Open()))
	}
	for _, c := range AllCategories {
		mustFill(t, &sc, c, 0)
	}
	if !sc.Complete() || len(sc.Open()) != 0 {
		t.Fatalf("expected complete scorecard")
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"aces", CategoryAces},
		{"Full House", CategoryFullHouse},
		{"three-of-a-kind", CategoryThreeOfAKind},
		{"small-straightField", CategorySmallStraight},
		{"yatzyField", CategoryYatzy},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.raw)
		if err != nil {
			t.Fatalf("ParseCategory(%q) err: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseCategory(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}

	if _, err := ParseCategory("bonus"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func mustFill(t *testing.T, sc *ScoreCard, c Category, points int) {
	t.Helper()
	if err := sc.Fill(c, points); err != nil {
		t.Fatalf("Fill(%s, %d) err: %v", c, points, err)
	}
}
