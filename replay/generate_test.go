package replay

import (
	"encoding/base64"
	"errors"
	"reflect"
	"testing"

	"yatzy-lite/protocol"
	"yatzy-lite/yatzy"
)

func TestGenerateReplayTape_IsDeterministic(t *testing.T) {
	spec := fullGameSpec()

	tapeA, err := GenerateReplayTape(spec)
	if err != nil {
		t.Fatalf("GenerateReplayTape A failed: %v", err)
	}
	tapeB, err := GenerateReplayTape(spec)
	if err != nil {
		t.Fatalf("GenerateReplayTape B failed: %v", err)
	}

	if !reflect.DeepEqual(tapeA, tapeB) {
		t.Fatalf("expected deterministic replay tape for the same GameSpec")
	}

	counts := map[string]int{}
	for i, e := range tapeA.Events {
		counts[e.Type]++
		if e.Seq != uint64(i+1) {
			t.Fatalf("event %d has seq %d", i, e.Seq)
		}
	}
	if counts[protocol.TypeRollResult] != yatzy.TotalRounds || counts[protocol.TypeScoreResult] != yatzy.TotalRounds {
		t.Fatalf("unexpected event counts: %v", counts)
	}
	if counts[protocol.TypeGameOver] != 1 {
		t.Fatalf("expected one game_over event, got %d", counts[protocol.TypeGameOver])
	}
}

func TestGenerateReplayTape_EnvelopesDecode(t *testing.T) {
	tape, err := GenerateReplayTape(fullGameSpec())
	if err != nil {
		t.Fatal(err)
	}
	last := tape.Events[len(tape.Events)-1]
	bin, err := base64.StdEncoding.DecodeString(last.EnvelopeB64)
	if err != nil {
		t.Fatal(err)
	}
	env, err := protocol.DecodeServerEnvelope(bin)
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != protocol.TypeSnapshot || !protocol.Bool(env.Payload, "game_over") {
		t.Fatalf("expected final game-over snapshot, got %s %v", env.Type, env.Payload)
	}
	totals := protocol.Map(env.Payload, "totals")
	if got, _ := protocol.Int(totals, "grand_total"); got != expectedFullGameTotal {
		t.Fatalf("grand_total = %d, want %d", got, expectedFullGameTotal)
	}
}

func TestGenerateReplayTape_ReturnsReplayErrors(t *testing.T) {
	seed := int64(9)
	tests := []struct {
		name   string
		spec   GameSpec
		step   int32
		reason string
	}{
		{"hold before roll", GameSpec{Seed: &seed, Actions: []ActionSpec{{Type: "HOLD", Die: 0}}}, 0, ReasonHoldBeforeRoll},
		{"score before roll", GameSpec{Seed: &seed, Actions: []ActionSpec{{Type: "SCORE", Category: "chance"}}}, 0, ReasonNoRollYet},
		{"fourth roll", GameSpec{Seed: &seed, Actions: []ActionSpec{{Type: "ROLL"}, {Type: "ROLL"}, {Type: "ROLL"}, {Type: "ROLL"}}}, 3, ReasonRollLimit},
		{"bad die", GameSpec{Seed: &seed, Actions: []ActionSpec{{Type: "ROLL"}, {Type: "HOLD", Die: 5}}}, 1, ReasonInvalidDie},
		{"filled twice", GameSpec{Seed: &seed, Actions: []ActionSpec{
			{Type: "ROLL"}, {Type: "SCORE", Category: "chance"},
			{Type: "ROLL"}, {Type: "SCORE", Category: "chance"},
		}}, 3, ReasonCategoryFilled},
		{"faces run out", GameSpec{Faces: []int{1, 2, 3, 4, 5}, Actions: []ActionSpec{{Type: "ROLL"}, {Type: "ROLL"}}}, 1, ReasonFacesExhausted},
		{"unknown action", GameSpec{Actions: []ActionSpec{{Type: "JUMP"}}}, 0, ReasonInvalidAction},
		{"unknown category", GameSpec{Actions: []ActionSpec{{Type: "ROLL"}, {Type: "SCORE", Category: "pairs"}}}, 1, ReasonInvalidCategory},
		{"face out of range", GameSpec{Faces: []int{1, 7}, Actions: []ActionSpec{{Type: "ROLL"}}}, -1, ReasonInvalidSpec},
		{"no actions", GameSpec{}, -1, ReasonInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateReplayTape(tt.spec)
			var replayErr *ReplayError
			if !errors.As(err, &replayErr) {
				t.Fatalf("expected ReplayError, got %T (%v)", err, err)
			}
			if replayErr.Reason != tt.reason || replayErr.StepIndex != tt.step {
				t.Fatalf("got step=%d reason=%s, want step=%d reason=%s", replayErr.StepIndex, replayErr.Reason, tt.step, tt.reason)
			}
		})
	}
}

func TestGenerateReplayTape_GameOverRejectsMoreActions(t *testing.T) {
	spec := fullGameSpec()
	spec.Actions = append(spec.Actions, ActionSpec{Type: "ROLL"})

	_, err := GenerateReplayTape(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("expected ReplayError, got %v", err)
	}
	if replayErr.Reason != ReasonGameOver {
		t.Fatalf("unexpected reason: %s", replayErr.Reason)
	}
	if replayErr.Expected == nil || replayErr.Expected.Phase != yatzy.PhaseGameOver.String() {
		t.Fatalf("expected game-over state, got %+v", replayErr.Expected)
	}
}

func TestToWireReplayTape(t *testing.T) {
	tape, err := GenerateReplayTape(fullGameSpec())
	if err != nil {
		t.Fatal(err)
	}
	wire := ToWireReplayTape(tape)
	if wire.GameID != tape.GameID || len(wire.Events) != len(tape.Events) {
		t.Fatalf("wire tape does not mirror the source tape")
	}
	if wire.Steps != 2*yatzy.TotalRounds || !wire.GameOver || wire.Phase != yatzy.PhaseGameOver.String() {
		t.Fatalf("unexpected wire outcome: steps=%d over=%v phase=%s", wire.Steps, wire.GameOver, wire.Phase)
	}
	if wire.Totals.GrandTotal != expectedFullGameTotal || wire.Totals.BonusEarned {
		t.Fatalf("unexpected wire totals: %+v", wire.Totals)
	}
	if len(wire.Scored) != yatzy.TotalRounds || wire.Scored[12].Category != "chance" || wire.Scored[12].Points != 30 {
		t.Fatalf("unexpected scored rounds: %+v", wire.Scored)
	}
	if ToWireReplayTape(nil) != nil {
		t.Fatalf("nil tape should stay nil")
	}
}

func TestGenerateReplayTape_PartialGameFinalState(t *testing.T) {
	spec := GameSpec{
		Faces:   []int{1, 2, 3, 4, 5},
		Actions: []ActionSpec{{Type: "ROLL"}, {Type: "SCORE", Category: "large_straight"}},
	}
	tape, err := GenerateReplayTape(spec)
	if err != nil {
		t.Fatal(err)
	}
	if tape.Steps != 2 || tape.Final.GameOver || tape.Final.Round != 2 {
		t.Fatalf("unexpected final state: %+v", tape.Final)
	}
	if tape.Final.Totals.LowerSum != yatzy.LargeStraightPoints || len(tape.Final.Scored) != 1 {
		t.Fatalf("unexpected totals: %+v", tape.Final)
	}
}

func TestToWireReplayError(t *testing.T) {
	seed := int64(3)
	_, err := GenerateReplayTape(GameSpec{Seed: &seed, Actions: []ActionSpec{
		{Type: "ROLL"}, {Type: "ROLL"}, {Type: "ROLL"}, {Type: "ROLL"},
	}})
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("expected ReplayError, got %v", err)
	}
	wire := ToWireReplayError(replayErr)
	if wire.Step != 4 || wire.Reason != ReasonRollLimit {
		t.Fatalf("unexpected wire error: %+v", wire)
	}
	x := wire.Expected
	if x == nil || x.RollsUsed != yatzy.MaxRolls || x.RollsLeft != 0 || x.CanRoll || !x.CanHold {
		t.Fatalf("unexpected expected state: %+v", x)
	}
	if len(x.OpenCategories) != yatzy.CategoryCount {
		t.Fatalf("all categories should be open, got %v", x.OpenCategories)
	}

	spec := ToWireReplayError(&ReplayError{StepIndex: -1, Reason: ReasonInvalidSpec})
	if spec.Step != 0 || spec.Expected != nil {
		t.Fatalf("spec errors have no step: %+v", spec)
	}
	if ToWireReplayError(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestTapeBuilder_PushReportsEncodeFailure(t *testing.T) {
	b := newTapeBuilder("g")
	if err := b.push(protocol.TypeSnapshot, map[string]any{"ok": 1}); err != nil {
		t.Fatal(err)
	}
	err := b.push(protocol.TypeRollResult, map[string]any{"bad": make(chan int)})
	if !errors.Is(err, errEncode) {
		t.Fatalf("expected errEncode, got %v", err)
	}
	if reasonFor(err) != ReasonEncodeFailed {
		t.Fatalf("reason = %s", reasonFor(err))
	}
	if len(b.events) != 1 || b.seq != 1 {
		t.Fatalf("failed push must not touch the tape: %d events, seq %d", len(b.events), b.seq)
	}
}

func TestScoreFaces(t *testing.T) {
	scores, err := ScoreFaces([]int{3, 3, 3, 5, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"threes": 9, "fives": 10, "full_house": yatzy.FullHousePoints, "three_of_a_kind": 19, "chance": 19, "yatzy": 0}
	for c, points := range want {
		if scores[c] != points {
			t.Fatalf("%s = %d, want %d", c, scores[c], points)
		}
	}
	if len(scores) != yatzy.CategoryCount {
		t.Fatalf("expected every category, got %d", len(scores))
	}
	for _, bad := range [][]int{{1, 2, 3}, {1, 2, 3, 4, 7}} {
		var replayErr *ReplayError
		if _, err := ScoreFaces(bad); !errors.As(err, &replayErr) || replayErr.Reason != ReasonInvalidSpec {
			t.Fatalf("ScoreFaces(%v) = %v", bad, err)
		}
	}
}

// Every round rolls five sixes, so only sixes, three and four of a kind,
// yatzy and chance score. The upper sum of 30 earns no bonus.
const expectedFullGameTotal = 30 + 30 + 30 + yatzy.YatzyPoints + 30

func fullGameSpec() GameSpec {
	faces := make([]int, 0, yatzy.TotalRounds*yatzy.DiceCount)
	for i := 0; i < yatzy.TotalRounds*yatzy.DiceCount; i++ {
		faces = append(faces, 6)
	}
	actions := make([]ActionSpec, 0, 2*yatzy.TotalRounds)
	for _, c := range yatzy.AllCategories {
		actions = append(actions, ActionSpec{Type: "ROLL"}, ActionSpec{Type: "SCORE", Category: c.String()})
	}
	return GameSpec{Faces: faces, Actions: actions}
}
