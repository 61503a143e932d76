package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Face is the value shown on a single die.
//
// 0 means the die has not been rolled in the current round; 1..6 are the
// regular faces.
type Face byte

const (
	FaceUnset Face = 0
	FaceOne   Face = 1
	FaceTwo   Face = 2
	FaceThree Face = 3
	FaceFour  Face = 4
	FaceFive  Face = 5
	FaceSix   Face = 6
)

// Sides is the number of faces on a die.
const Sides = 6

var AllFaces = []Face{FaceOne, FaceTwo, FaceThree, FaceFour, FaceFive, FaceSix}

func (f Face) String() string {
	if f == FaceUnset {
		return "-"
	}
	if !f.Valid() {
		return "Invalid"
	}
	return strconv.Itoa(int(f))
}

// Valid reports whether f is a rolled face (1..6).
func (f Face) Valid() bool {
	return f >= FaceOne && f <= FaceSix
}

// Pips returns the numeric value used in sums. Unset faces count as 0.
func (f Face) Pips() int {
	if !f.Valid() {
		return 0
	}
	return int(f)
}

// ParseFace converts "1".."6" (surrounding spaces allowed) to a Face.
func ParseFace(raw string) (Face, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return FaceUnset, fmt.Errorf("invalid face: %q", raw)
	}
	return FaceFromInt(n)
}

// FaceFromInt converts 1..6 to a Face.
func FaceFromInt(n int) (Face, error) {
	if n < int(FaceOne) || n > int(FaceSix) {
		return FaceUnset, fmt.Errorf("face out of range: %d", n)
	}
	return Face(n), nil
}
