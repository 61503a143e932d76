package yatzy

import "yatzy-lite/dice"

// rule scores one category. counts is the face frequency table of faces.
type rule func(faces dice.FaceList, counts [dice.Sides + 1]int) int

var rules = [CategoryCount]rule{
	CategoryAces:          upper(dice.FaceOne),
	CategoryTwos:          upper(dice.FaceTwo),
	CategoryThrees:        upper(dice.FaceThree),
	CategoryFours:         upper(dice.FaceFour),
	CategoryFives:         upper(dice.FaceFive),
	CategorySixes:         upper(dice.FaceSix),
	CategoryThreeOfAKind:  ofAKind(3),
	CategoryFourOfAKind:   ofAKind(4),
	CategoryFullHouse:     fullHouse,
	CategorySmallStraight: straight(SmallStraightPoints, smallStraights),
	CategoryLargeStraight: straight(LargeStraightPoints, largeStraights),
	CategoryYatzy:         yatzy,
	CategoryChance:        chance,
}

var (
	smallStraights = [][]dice.Face{
		{dice.FaceOne, dice.FaceTwo, dice.FaceThree, dice.FaceFour},
		{dice.FaceTwo, dice.FaceThree, dice.FaceFour, dice.FaceFive},
		{dice.FaceThree, dice.FaceFour, dice.FaceFive, dice.FaceSix},
	}
	largeStraights = [][]dice.Face{
		{dice.FaceOne, dice.FaceTwo, dice.FaceThree, dice.FaceFour, dice.FaceFive},
		{dice.FaceTwo, dice.FaceThree, dice.FaceFour, dice.FaceFive, dice.FaceSix},
	}
)

// Score returns the points faces would earn in category c.
//
// Score is pure: it never mutates faces and yields a value for every input.
// Unset faces count as 0 and never complete a pattern. An unknown category
// scores 0.
func Score(faces [DiceCount]dice.Face, c Category) int {
	if !c.Valid() {
		return 0
	}
	fl := dice.FaceList(faces[:])
	return rules[c](fl, fl.Counts())
}

// ScoreAll scores faces against every category, indexed by Category.
func ScoreAll(faces [DiceCount]dice.Face) [CategoryCount]int {
	fl := dice.FaceList(faces[:])
	counts := fl.Counts()
	var out [CategoryCount]int
	for c, r := range rules {
		out[c] = r(fl, counts)
	}
	return out
}

func upper(target dice.Face) rule {
	return func(faces dice.FaceList, counts [dice.Sides + 1]int) int {
		return counts[target] * int(target)
	}
}

func ofAKind(n int) rule {
	return func(faces dice.FaceList, counts [dice.Sides + 1]int) int {
		if maxGroup(counts) >= n {
			return faces.Sum()
		}
		return 0
	}
}

func fullHouse(_ dice.FaceList, counts [dice.Sides + 1]int) int {
	hasThree, hasTwo := false, false
	for _, f := range dice.AllFaces {
		switch counts[f] {
		case 3:
			hasThree = true
		case 2:
			hasTwo = true
		}
	}
	if hasThree && hasTwo {
		return FullHousePoints
	}
	return 0
}

// straight matches when the dice contain every face of any run, so a
// repeated face alongside a run still qualifies.
func straight(points int, runs [][]dice.Face) rule {
	return func(_ dice.FaceList, counts [dice.Sides + 1]int) int {
		for _, run := range runs {
			if containsRun(counts, run) {
				return points
			}
		}
		return 0
	}
}

func yatzy(_ dice.FaceList, counts [dice.Sides + 1]int) int {
	if maxGroup(counts) == DiceCount {
		return YatzyPoints
	}
	return 0
}

func chance(faces dice.FaceList, _ [dice.Sides + 1]int) int {
	return faces.Sum()
}

// maxGroup is the size of the largest group of equal rolled faces.
func maxGroup(counts [dice.Sides + 1]int) int {
	best := 0
	for _, f := range dice.AllFaces {
		if counts[f] > best {
			best = counts[f]
		}
	}
	return best
}

func containsRun(counts [dice.Sides + 1]int, run []dice.Face) bool {
	for _, f := range run {
		if counts[f] == 0 {
			return false
		}
	}
	return true
}
