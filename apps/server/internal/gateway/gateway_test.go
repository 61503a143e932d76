package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yatzy-lite/apps/server/internal/auth"
	"yatzy-lite/apps/server/internal/codec"
	"yatzy-lite/apps/server/internal/lobby"
	"yatzy-lite/apps/server/internal/session"
	"yatzy-lite/protocol"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	lby := lobby.New(nil, session.Options{})
	t.Cleanup(lby.Close)
	gw := New(lby, auth.NewManager(0))

	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.Header.Get("X-Session-Token") == "" {
		t.Fatalf("expected a guest session token header")
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	data, err := (&protocol.ClientEnvelope{Type: msgType, Payload: payload}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) *protocol.ServerEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := protocol.DecodeServerEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestGateway_JoinRollAndErrors(t *testing.T) {
	conn := dial(t)

	send(t, conn, protocol.TypeRoll, nil)
	if env := receive(t, conn); env.Type != protocol.TypeError || protocol.String(env.Payload, "code") != codec.CodeNoSession {
		t.Fatalf("expected no_session error, got %s %v", env.Type, env.Payload)
	}

	send(t, conn, protocol.TypeJoin, nil)
	snap := receive(t, conn)
	if snap.Type != protocol.TypeSnapshot || snap.SessionID == "" {
		t.Fatalf("expected snapshot, got %s", snap.Type)
	}

	send(t, conn, protocol.TypeRoll, nil)
	roll := receive(t, conn)
	if roll.Type != protocol.TypeRollResult {
		t.Fatalf("expected roll_result, got %s", roll.Type)
	}
	if used, _ := protocol.Int(roll.Payload, "rolls_used"); used != 1 {
		t.Fatalf("rolls_used = %d", used)
	}

	send(t, conn, protocol.TypeHold, map[string]any{"die": 9})
	if env := receive(t, conn); protocol.String(env.Payload, "code") != codec.CodeInvalidDie {
		t.Fatalf("expected invalid_die, got %v", env.Payload)
	}

	send(t, conn, "dance", nil)
	if env := receive(t, conn); protocol.String(env.Payload, "code") != codec.CodeBadMessage {
		t.Fatalf("expected bad_message, got %v", env.Payload)
	}
}
