package replay

import (
	"encoding/base64"
	"errors"
	"fmt"

	"yatzy-lite/dice"
	"yatzy-lite/protocol"
	"yatzy-lite/yatzy"
)

const defaultGameID = "replay_local"

// errEncode marks a tape envelope that could not be encoded. It points at a
// payload builder bug, never at the spec.
var errEncode = errors.New("encode envelope")

func GenerateReplayTape(spec GameSpec) (*ReplayTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	game, err := yatzy.NewGame(yatzy.Config{Seed: ns.seed, ScriptedFaces: ns.faces})
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: ReasonInvalidSpec, Message: err.Error()}
	}

	builder := newTapeBuilder(defaultGameID)
	if err := builder.addSnapshot(game.Snapshot()); err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: ReasonEncodeFailed, Message: err.Error()}
	}

	for stepIdx, action := range ns.actions {
		if err := applyAction(game, builder, action); err != nil {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    reasonFor(err),
				Message:   fmt.Sprintf("%s: %v", action.kind, err),
				Expected:  expectedState(game),
			}
		}
	}
	if err := builder.addSnapshot(game.Snapshot()); err != nil {
		return nil, &ReplayError{StepIndex: int32(len(ns.actions)), Reason: ReasonEncodeFailed, Message: err.Error()}
	}

	return &ReplayTape{
		TapeVersion: 1,
		GameID:      builder.gameID,
		Steps:       len(ns.actions),
		Final:       finalState(game),
		Events:      builder.events,
	}, nil
}

func finalState(g *yatzy.Game) FinalState {
	out := FinalState{
		Round:    g.Round(),
		Phase:    g.Phase().String(),
		GameOver: g.IsOver(),
	}
	t := g.Totals()
	out.Totals = Totals{
		UpperSum:   t.UpperSum,
		Bonus:      t.Bonus,
		LowerSum:   t.LowerSum,
		GrandTotal: t.GrandTotal,
	}
	for _, r := range g.History() {
		out.Scored = append(out.Scored, ScoredRound{
			Round:    r.Round,
			Category: r.Category.String(),
			Points:   r.Points,
		})
	}
	return out
}

func applyAction(g *yatzy.Game, b *tapeBuilder, a normalizedAction) error {
	switch a.kind {
	case actionRoll:
		used, err := g.Roll()
		if err != nil {
			return err
		}
		faces, held := g.Dice()
		return b.push(protocol.TypeRollResult, protocol.RollPayload(used, faces, held))
	case actionHold:
		held, err := g.ToggleHold(a.die)
		if err != nil {
			return err
		}
		return b.push(protocol.TypeHoldResult, protocol.HoldPayload(a.die, held))
	case actionScore:
		res, err := g.CommitScore(a.category)
		if err != nil {
			return err
		}
		if err := b.push(protocol.TypeScoreResult, protocol.ScorePayload(res)); err != nil {
			return err
		}
		if res.Phase == yatzy.PhaseGameOver {
			return b.push(protocol.TypeGameOver, protocol.GameOverPayload(res.Totals))
		}
		return nil
	default:
		return fmt.Errorf("unsupported action %d", a.kind)
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, errEncode):
		return ReasonEncodeFailed
	case errors.Is(err, yatzy.ErrGameOver):
		return ReasonGameOver
	case errors.Is(err, yatzy.ErrRollLimitExceeded):
		return ReasonRollLimit
	case errors.Is(err, yatzy.ErrHoldBeforeRoll):
		return ReasonHoldBeforeRoll
	case errors.Is(err, yatzy.ErrInvalidDieIndex):
		return ReasonInvalidDie
	case errors.Is(err, yatzy.ErrCategoryAlreadyFilled):
		return ReasonCategoryFilled
	case errors.Is(err, yatzy.ErrNoRollYet):
		return ReasonNoRollYet
	case errors.Is(err, yatzy.ErrInvalidCategory):
		return ReasonInvalidCategory
	case errors.Is(err, dice.ErrSourceExhausted):
		return ReasonFacesExhausted
	default:
		return ReasonInvalidAction
	}
}

func expectedState(g *yatzy.Game) *ExpectedState {
	moves := g.LegalMoves()
	out := &ExpectedState{
		Round:     g.Round(),
		Phase:     g.Phase().String(),
		RollsUsed: g.RollsUsed(),
		CanRoll:   moves.CanRoll,
		CanHold:   moves.CanHold,
	}
	for _, c := range g.OpenCategories() {
		out.OpenCategories = append(out.OpenCategories, c.String())
	}
	return out
}

type tapeBuilder struct {
	gameID string
	seq    uint64
	events []ReplayEvent
}

func newTapeBuilder(gameID string) *tapeBuilder {
	return &tapeBuilder{
		gameID: gameID,
		events: make([]ReplayEvent, 0, 64),
	}
}

func (b *tapeBuilder) addSnapshot(snap yatzy.Snapshot) error {
	return b.push(protocol.TypeSnapshot, protocol.SnapshotPayload(snap))
}

// push appends one envelope. A failed encode leaves the tape untouched.
func (b *tapeBuilder) push(msgType string, payload map[string]any) error {
	env := &protocol.ServerEnvelope{
		SessionID: b.gameID,
		Seq:       b.seq + 1,
		TsMs:      int64(b.seq + 1),
		Type:      msgType,
		Payload:   payload,
	}
	bin, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("%w %s: %v", errEncode, msgType, err)
	}
	b.seq++
	b.events = append(b.events, ReplayEvent{
		Type:        msgType,
		Seq:         b.seq,
		Value:       env,
		EnvelopeB64: base64.StdEncoding.EncodeToString(bin),
	})
	return nil
}
