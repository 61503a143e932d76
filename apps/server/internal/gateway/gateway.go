package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"yatzy-lite/apps/server/internal/auth"
	"yatzy-lite/apps/server/internal/codec"
	"yatzy-lite/apps/server/internal/lobby"
	"yatzy-lite/apps/server/internal/session"
	"yatzy-lite/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connection is one websocket client.
type Connection struct {
	ID       string
	UserID   uint64
	Username string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway

	mu      sync.Mutex
	session *session.Session
	errSeq  uint64
	logger  zerolog.Logger
}

// Gateway manages websocket connections and routes their messages to sessions.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection
	nextConnID  uint64
	lobby       *lobby.Lobby
	auth        auth.Service
}

func New(lby *lobby.Lobby, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		lobby:       lby,
		auth:        authService,
	}
}

// HandleWebSocket resolves ?token= (or issues a guest account) and upgrades.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID, sessionToken, _ := g.auth.ResolveOrCreateAccount(token)
	if userID == 0 {
		log.Error().Msg("account store unavailable, refusing websocket")
		http.Error(w, "account store unavailable", http.StatusServiceUnavailable)
		return
	}
	_, username, _ := g.auth.ResolveSession(sessionToken)

	header := http.Header{}
	header.Set("X-Session-Token", sessionToken)
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	c := &Connection{
		ID:       connID,
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Gateway:  g,
		logger:   log.With().Str("conn", connID).Uint64("user", userID).Logger(),
	}
	if prev := g.userConns[userID]; prev != nil {
		// A newer tab takes over; the old socket is closed by its pumps.
		prev.Conn.Close()
	}
	g.connections[connID] = c
	g.userConns[userID] = c
	total := len(g.connections)
	g.mu.Unlock()

	c.logger.Info().Int("total", total).Msg("client connected")

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}
		if messageType == websocket.BinaryMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	cmd, err := codec.DecodeCommand(data)
	if err != nil {
		c.logger.Debug().Err(err).Msg("bad client message")
		c.sendError(codec.ErrorCode(err), err)
		return
	}
	c.logger.Debug().Str("type", cmd.Type).Uint64("seq", cmd.Seq).Msg("received")

	if cmd.Type == protocol.TypeJoin {
		c.handleJoin()
		return
	}

	s := c.currentSession()
	if s == nil {
		c.sendErrorCode(codec.CodeNoSession, "join first")
		return
	}
	if err := s.SubmitEvent(eventFor(cmd)); err != nil {
		if errors.Is(err, session.ErrSessionClosed) {
			c.setSession(nil)
			c.sendErrorCode(codec.CodeSessionClosed, err.Error())
			return
		}
		c.sendError(codec.ErrorCode(err), err)
	}
}

func (c *Connection) handleJoin() {
	s, resumed, err := c.Gateway.lobby.Start(c.UserID, c.Username, c.Gateway.sendToUser)
	if err != nil {
		c.sendError(codec.CodeInternal, err)
		return
	}
	c.setSession(s)
	if err := s.SubmitEvent(session.Event{Type: session.EventJoin}); err != nil {
		c.sendError(codec.ErrorCode(err), err)
		return
	}
	c.logger.Info().Str("session", s.ID).Bool("resumed", resumed).Msg("joined")
}

func eventFor(cmd codec.Command) session.Event {
	e := session.Event{Die: cmd.Die, Category: cmd.Category}
	switch cmd.Type {
	case protocol.TypeNewGame:
		e.Type = session.EventNewGame
	case protocol.TypeRoll:
		e.Type = session.EventRoll
	case protocol.TypeHold:
		e.Type = session.EventHold
	case protocol.TypePreview:
		e.Type = session.EventPreview
	case protocol.TypeScore:
		e.Type = session.EventScore
	case protocol.TypeHint:
		e.Type = session.EventHint
	}
	return e
}

func (c *Connection) currentSession() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Connection) setSession(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Connection) sendError(code string, err error) {
	c.sendErrorCode(code, err.Error())
}

// sendErrorCode delivers an error envelope. Error envelopes use their own
// sequence so session tapes stay contiguous.
func (c *Connection) sendErrorCode(code, msg string) {
	sessionID := ""
	if s := c.currentSession(); s != nil {
		sessionID = s.ID
	}
	c.mu.Lock()
	c.errSeq++
	seq := c.errSeq
	c.mu.Unlock()

	env := codec.WrapServerEnvelope(sessionID, seq, protocol.TypeError, protocol.ErrorPayload(code, msg))
	data, err := env.Marshal()
	if err != nil {
		c.logger.Error().Err(err).Msg("encode error envelope failed")
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	current := g.userConns[c.UserID] == c
	if current {
		delete(g.userConns, c.UserID)
	}
	total := len(g.connections)
	g.mu.Unlock()

	close(c.Send)
	if s := c.currentSession(); s != nil && current {
		_ = s.SubmitEvent(session.Event{Type: session.EventConnLost})
	}
	c.logger.Info().Int("total", total).Msg("client disconnected")
}

// sendToUser delivers data to the user's current connection, dropping it
// when the buffer is full.
func (g *Gateway) sendToUser(userID uint64, data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c := g.userConns[userID]
	if c == nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.logger.Warn().Msg("send buffer full, dropping message")
	}
}

// ConnectionCount reports open connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
