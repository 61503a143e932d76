package dice

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrSourceExhausted is raised (as a panic value) by a scripted source that
// has no faces left. Callers driving scripted games recover it and turn it
// into an error.
var ErrSourceExhausted = errors.New("scripted dice exhausted")

// Source is the randomness behind a roll. Intn must return a value in [0, n).
//
// *rand.Rand satisfies it directly.
type Source interface {
	Intn(n int) int
}

// NewSeededSource returns a math/rand source. A zero seed means time based.
func NewSeededSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RollFace draws one uniformly random face from src.
func RollFace(src Source) Face {
	return Face(src.Intn(Sides) + 1)
}

// ScriptedSource replays a fixed list of faces, one per Intn call.
// It is meant for replays and tests where rolls must be known in advance.
type ScriptedSource struct {
	mu    sync.Mutex
	faces []Face
	next  int
}

func NewScriptedSource(faces ...Face) *ScriptedSource {
	cp := make([]Face, len(faces))
	copy(cp, faces)
	return &ScriptedSource{faces: cp}
}

func (s *ScriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.faces) {
		panic(ErrSourceExhausted)
	}
	f := s.faces[s.next]
	s.next++
	v := int(f) - 1
	if v < 0 || v >= n {
		panic(errors.New("scripted face out of range"))
	}
	return v
}

// Remaining reports how many faces are still queued.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces) - s.next
}
