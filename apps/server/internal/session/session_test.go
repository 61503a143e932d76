package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"yatzy-lite/apps/server/internal/ledger"
	"yatzy-lite/dice"
	"yatzy-lite/protocol"
	"yatzy-lite/yatzy"
)

type recordingLedger struct {
	ledger.Service
	mu    sync.Mutex
	games []ledger.GameRecord
}

func (r *recordingLedger) RecordGame(_ context.Context, rec ledger.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, rec)
	return nil
}

type outbox struct {
	mu    sync.Mutex
	types []string
}

func (o *outbox) send(_ uint64, data []byte) {
	env, err := protocol.DecodeServerEnvelope(data)
	if err != nil {
		panic(err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.types = append(o.types, env.Type)
}

func (o *outbox) count(msgType string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, t := range o.types {
		if t == msgType {
			n++
		}
	}
	return n
}

func allSixes() yatzy.Config {
	faces := make([]dice.Face, yatzy.TotalRounds*yatzy.DiceCount)
	for i := range faces {
		faces[i] = dice.FaceSix
	}
	return yatzy.Config{ScriptedFaces: faces}
}

func newTestSession(t *testing.T, led ledger.Service, out *outbox) *Session {
	t.Helper()
	s, err := New("s-test", 42, "tester", out.send, led, Options{NewConfig: allSixes})
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestSession_PlaysAndRecordsAGame(t *testing.T) {
	led := &recordingLedger{}
	out := &outbox{}
	s := newTestSession(t, led, out)

	ended := make(chan GameEndInfo, 1)
	s.AddGameEndHook(func(info GameEndInfo) { ended <- info })

	if err := s.SubmitEvent(Event{Type: EventJoin}); err != nil {
		t.Fatalf("join: %v", err)
	}
	for _, c := range yatzy.AllCategories {
		if err := s.SubmitEvent(Event{Type: EventRoll}); err != nil {
			t.Fatalf("roll before %s: %v", c, err)
		}
		if err := s.SubmitEvent(Event{Type: EventPreview, Category: c}); err != nil {
			t.Fatalf("preview %s: %v", c, err)
		}
		if err := s.SubmitEvent(Event{Type: EventScore, Category: c}); err != nil {
			t.Fatalf("score %s: %v", c, err)
		}
	}

	select {
	case info := <-ended:
		if info.Totals.GrandTotal != 170 || len(info.History) != yatzy.TotalRounds {
			t.Fatalf("unexpected end info: %+v", info)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("game end hook not called")
	}

	led.mu.Lock()
	defer led.mu.Unlock()
	if len(led.games) != 1 {
		t.Fatalf("expected one recorded game, got %d", len(led.games))
	}
	rec := led.games[0]
	if rec.UserID != 42 || rec.GrandTotal != 170 || rec.GameID != s.GameID() {
		t.Fatalf("unexpected record: %+v", rec)
	}
	// snapshot + 13 * (roll_result + score_result) + game_over; the join
	// snapshot and previews are not state changes.
	if len(rec.Events) != 1+2*yatzy.TotalRounds+1 {
		t.Fatalf("unexpected tape length %d", len(rec.Events))
	}
	checkTape(t, rec.Events)
	if out.count(protocol.TypeGameOver) != 1 {
		t.Fatalf("expected one game_over envelope")
	}

	if err := s.SubmitEvent(Event{Type: EventRoll}); !errors.Is(err, yatzy.ErrGameOver) {
		t.Fatalf("expected ErrGameOver after the last commit, got %v", err)
	}
}

func checkTape(t *testing.T, events []ledger.EventItem) {
	t.Helper()
	if events[0].EventType != protocol.TypeSnapshot || events[len(events)-1].EventType != protocol.TypeGameOver {
		t.Fatalf("tape must run from snapshot to game_over, got %s..%s",
			events[0].EventType, events[len(events)-1].EventType)
	}
	for i, e := range events {
		if e.Seq != uint64(i+1) {
			t.Fatalf("tape seq %d at index %d", e.Seq, i)
		}
		switch e.EventType {
		case protocol.TypePreviewResult, protocol.TypeHintResult:
			t.Fatalf("%s must not be taped", e.EventType)
		}
	}
}

func TestSession_EachGameTapeStartsAtOne(t *testing.T) {
	led := &recordingLedger{}
	s := newTestSession(t, led, &outbox{})

	play := func() {
		for _, c := range yatzy.AllCategories {
			if err := s.SubmitEvent(Event{Type: EventRoll}); err != nil {
				t.Fatal(err)
			}
			if err := s.SubmitEvent(Event{Type: EventHint}); err != nil {
				t.Fatal(err)
			}
			if err := s.SubmitEvent(Event{Type: EventScore, Category: c}); err != nil {
				t.Fatal(err)
			}
		}
	}
	play()
	if err := s.SubmitEvent(Event{Type: EventNewGame}); err != nil {
		t.Fatal(err)
	}
	play()

	led.mu.Lock()
	defer led.mu.Unlock()
	if len(led.games) != 2 || led.games[0].GameID == led.games[1].GameID {
		t.Fatalf("expected two distinct recorded games, got %d", len(led.games))
	}
	for _, g := range led.games {
		checkTape(t, g.Events)
	}
}

func TestSession_RejectsIllegalMoves(t *testing.T) {
	s := newTestSession(t, nil, &outbox{})

	if err := s.SubmitEvent(Event{Type: EventHold, Die: 0}); !errors.Is(err, yatzy.ErrHoldBeforeRoll) {
		t.Fatalf("expected ErrHoldBeforeRoll, got %v", err)
	}
	if err := s.SubmitEvent(Event{Type: EventScore, Category: yatzy.CategoryChance}); !errors.Is(err, yatzy.ErrNoRollYet) {
		t.Fatalf("expected ErrNoRollYet, got %v", err)
	}
	if snap := s.Snapshot(); snap.RollsUsed != 0 || snap.Phase != yatzy.PhaseAwaitingRoll {
		t.Fatalf("illegal moves must not change state: %+v", snap)
	}
}

func TestSession_HintAndNewGame(t *testing.T) {
	out := &outbox{}
	s := newTestSession(t, nil, out)

	if err := s.SubmitEvent(Event{Type: EventHint}); err != nil {
		t.Fatalf("hint: %v", err)
	}
	if out.count(protocol.TypeHintResult) != 1 {
		t.Fatalf("expected a hint envelope")
	}

	if err := s.SubmitEvent(Event{Type: EventRoll}); err != nil {
		t.Fatal(err)
	}
	first := s.GameID()
	if err := s.SubmitEvent(Event{Type: EventNewGame}); err != nil {
		t.Fatal(err)
	}
	if s.GameID() == first {
		t.Fatalf("new game must get a new id")
	}
	if snap := s.Snapshot(); snap.RollsUsed != 0 || snap.Round != 1 {
		t.Fatalf("new game not reset: %+v", snap)
	}
}

func TestSession_IdleAndClose(t *testing.T) {
	s := newTestSession(t, nil, &outbox{})

	if s.IsIdleFor(0) {
		t.Fatalf("online session must not be idle")
	}
	if err := s.SubmitEvent(Event{Type: EventConnLost}); err != nil {
		t.Fatal(err)
	}
	if !s.IsIdleFor(0) {
		t.Fatalf("disconnected session should be idle for ttl 0")
	}
	if s.IsIdleFor(time.Hour) {
		t.Fatalf("session should not be idle for an hour yet")
	}

	if err := s.SubmitEvent(Event{Type: EventClose}); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitEvent(Event{Type: EventRoll}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if !s.IsClosed() {
		t.Fatalf("expected closed session")
	}
}
