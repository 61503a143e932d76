package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client message types.
const (
	TypeJoin    = "join"
	TypeNewGame = "new_game"
	TypeRoll    = "roll"
	TypeHold    = "hold"
	TypePreview = "preview"
	TypeScore   = "score"
	TypeHint    = "hint"
)

// Server message types.
const (
	TypeSnapshot      = "snapshot"
	TypeRollResult    = "roll_result"
	TypeHoldResult    = "hold_result"
	TypePreviewResult = "preview_result"
	TypeScoreResult   = "score_result"
	TypeHintResult    = "hint"
	TypeGameOver      = "game_over"
	TypeError         = "error"
)

// ServerEnvelope wraps every message sent to a client.
type ServerEnvelope struct {
	SessionID string
	Seq       uint64
	TsMs      int64
	Type      string
	Payload   map[string]any
}

// ClientEnvelope wraps every message received from a client.
type ClientEnvelope struct {
	SessionID string
	Seq       uint64
	Type      string
	Payload   map[string]any
}

// Marshal encodes the envelope as a binary google.protobuf.Struct.
func (e *ServerEnvelope) Marshal() ([]byte, error) {
	st, err := e.toStruct()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// MarshalJSON renders the envelope with protojson, for logs and debugging.
func (e *ServerEnvelope) MarshalJSON() ([]byte, error) {
	st, err := e.toStruct()
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(st)
}

func (e *ServerEnvelope) toStruct() (*structpb.Struct, error) {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	st, err := structpb.NewStruct(map[string]any{
		"session_id": e.SessionID,
		"seq":        e.Seq,
		"ts_ms":      e.TsMs,
		"type":       e.Type,
		"payload":    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", e.Type, err)
	}
	return st, nil
}

// DecodeServerEnvelope is the inverse of ServerEnvelope.Marshal.
func DecodeServerEnvelope(data []byte) (*ServerEnvelope, error) {
	m, err := decodeStruct(data)
	if err != nil {
		return nil, err
	}
	seq, _ := Uint(m, "seq")
	ts, _ := Int(m, "ts_ms")
	return &ServerEnvelope{
		SessionID: String(m, "session_id"),
		Seq:       seq,
		TsMs:      int64(ts),
		Type:      String(m, "type"),
		Payload:   Map(m, "payload"),
	}, nil
}

// Marshal encodes a client envelope the same way servers do.
func (e *ClientEnvelope) Marshal() ([]byte, error) {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	st, err := structpb.NewStruct(map[string]any{
		"session_id": e.SessionID,
		"seq":        e.Seq,
		"type":       e.Type,
		"payload":    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", e.Type, err)
	}
	return proto.Marshal(st)
}

func DecodeClientEnvelope(data []byte) (*ClientEnvelope, error) {
	m, err := decodeStruct(data)
	if err != nil {
		return nil, err
	}
	t := String(m, "type")
	if t == "" {
		return nil, fmt.Errorf("client envelope missing type")
	}
	seq, _ := Uint(m, "seq")
	return &ClientEnvelope{
		SessionID: String(m, "session_id"),
		Seq:       seq,
		Type:      t,
		Payload:   Map(m, "payload"),
	}, nil
}

func decodeStruct(data []byte) (map[string]any, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return st.AsMap(), nil
}

// String reads a string field, "" when missing.
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Int reads a whole number field. Struct numbers decode as float64.
func Int(m map[string]any, key string) (int, bool) {
	f, ok := m[key].(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func Uint(m map[string]any, key string) (uint64, bool) {
	n, ok := Int(m, key)
	if !ok || n < 0 {
		return 0, false
	}
	return uint64(n), true
}

func Bool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Map reads a nested object, never nil.
func Map(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// Ints converts a slice to the []any form Struct values require.
func Ints(values []int) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func Bools(values []bool) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
