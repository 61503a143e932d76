package dice

// FaceList is an ordered group of faces, typically the five dice of a round.
type FaceList []Face

// Counts is the face frequency table: Counts()[n] is how many dice show n.
// Slot 0 collects unset faces and is never matched by a scoring rule.
func (fl FaceList) Counts() [Sides + 1]int {
	var counts [Sides + 1]int
	for _, f := range fl {
		if f.Valid() {
			counts[f]++
		} else {
			counts[0]++
		}
	}
	return counts
}

// Sum adds the pips of every face.
func (fl FaceList) Sum() int {
	total := 0
	for _, f := range fl {
		total += f.Pips()
	}
	return total
}

// SumOf adds the pips of the faces equal to target.
func (fl FaceList) SumOf(target Face) int {
	total := 0
	for _, f := range fl {
		if f == target && f.Valid() {
			total += f.Pips()
		}
	}
	return total
}

// ContainsAll reports whether every face in want shows on at least one die.
func (fl FaceList) ContainsAll(want ...Face) bool {
	counts := fl.Counts()
	for _, f := range want {
		if !f.Valid() || counts[f] == 0 {
			return false
		}
	}
	return true
}

// AllRolled reports whether every face in the list has been rolled.
func (fl FaceList) AllRolled() bool {
	for _, f := range fl {
		if !f.Valid() {
			return false
		}
	}
	return len(fl) > 0
}

func (fl FaceList) Ints() []int {
	out := make([]int, len(fl))
	for i, f := range fl {
		out[i] = int(f)
	}
	return out
}

func (fl FaceList) Clone() FaceList {
	out := make(FaceList, len(fl))
	copy(out, fl)
	return out
}
