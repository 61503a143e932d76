package codec

import (
	"errors"
	"fmt"
	"time"

	"yatzy-lite/protocol"
	"yatzy-lite/yatzy"
	"yatzy-lite/yatzy/advisor"
)

// Error codes carried by error envelopes.
const (
	CodeBadMessage      = "bad_message"
	CodeNoSession       = "no_session"
	CodeSessionClosed   = "session_closed"
	CodeRollLimit       = "roll_limit"
	CodeHoldBeforeRoll  = "hold_before_roll"
	CodeInvalidDie      = "invalid_die"
	CodeInvalidCategory = "invalid_category"
	CodeCategoryFilled  = "category_filled"
	CodeNoRollYet       = "no_roll_yet"
	CodeGameOver        = "game_over"
	CodeInternal        = "internal"
)

// ErrBadMessage marks client frames that cannot be decoded.
var ErrBadMessage = errors.New("bad message")

// Command is a decoded client request.
type Command struct {
	Type     string
	Seq      uint64
	Die      int
	Category yatzy.Category
}

// DecodeCommand parses a binary client envelope and validates its payload.
func DecodeCommand(data []byte) (Command, error) {
	env, err := protocol.DecodeClientEnvelope(data)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	cmd := Command{Type: env.Type, Seq: env.Seq}

	switch env.Type {
	case protocol.TypeJoin, protocol.TypeNewGame, protocol.TypeRoll, protocol.TypeHint:
	case protocol.TypeHold:
		die, ok := protocol.Int(env.Payload, "die")
		if !ok {
			return Command{}, fmt.Errorf("%w: hold needs an integer die", ErrBadMessage)
		}
		cmd.Die = die
	case protocol.TypePreview, protocol.TypeScore:
		c, err := yatzy.ParseCategory(protocol.String(env.Payload, "category"))
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", env.Type, err)
		}
		cmd.Category = c
	default:
		return Command{}, fmt.Errorf("%w: unknown message type %q", ErrBadMessage, env.Type)
	}
	return cmd, nil
}

// WrapServerEnvelope stamps a payload with session, seq and wall-clock time.
func WrapServerEnvelope(sessionID string, seq uint64, msgType string, payload map[string]any) *protocol.ServerEnvelope {
	return &protocol.ServerEnvelope{
		SessionID: sessionID,
		Seq:       seq,
		TsMs:      time.Now().UnixMilli(),
		Type:      msgType,
		Payload:   payload,
	}
}

func HintPayload(d advisor.Decision, brain string) map[string]any {
	out := map[string]any{
		"kind":    d.Kind.String(),
		"advisor": brain,
	}
	switch d.Kind {
	case advisor.DecisionRoll:
		out["holds"] = protocol.Bools(d.Holds[:])
	case advisor.DecisionScore:
		out["category"] = d.Category.String()
	}
	return out
}

// ErrorCode maps engine errors to stable wire codes.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, yatzy.ErrGameOver):
		return CodeGameOver
	case errors.Is(err, yatzy.ErrRollLimitExceeded):
		return CodeRollLimit
	case errors.Is(err, yatzy.ErrHoldBeforeRoll):
		return CodeHoldBeforeRoll
	case errors.Is(err, yatzy.ErrInvalidDieIndex):
		return CodeInvalidDie
	case errors.Is(err, yatzy.ErrCategoryAlreadyFilled):
		return CodeCategoryFilled
	case errors.Is(err, yatzy.ErrNoRollYet):
		return CodeNoRollYet
	case errors.Is(err, yatzy.ErrInvalidCategory):
		return CodeInvalidCategory
	case errors.Is(err, ErrBadMessage):
		return CodeBadMessage
	default:
		return CodeInternal
	}
}
