package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"yatzy-lite/apps/server/internal/codec"
	"yatzy-lite/apps/server/internal/ledger"
	"yatzy-lite/protocol"
	"yatzy-lite/yatzy"
	"yatzy-lite/yatzy/advisor"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session owns one player's game. A single actor goroutine applies every
// event, so moves are serialized without further locking in the engine.
type Session struct {
	ID       string
	UserID   uint64
	Username string

	mu       sync.RWMutex
	game     *yatzy.Game
	gameID   string
	closed   bool
	online   bool
	stopOnce sync.Once

	// offlineSince is zero while a connection is attached.
	offlineSince time.Time

	events chan Event
	done   chan struct{}

	// serverSeq numbers every envelope sent to the player. The game tape
	// keeps its own sequence, restarting at 1 with each game.
	serverSeq uint64
	tapeSeq   uint64
	tape      []ledger.EventItem

	send       func(userID uint64, data []byte)
	ledger     ledger.Service
	newConfig  func() yatzy.Config
	brain      advisor.Decider
	endHooks   []GameEndHook
	logger     zerolog.Logger
	ledgerWait time.Duration
}

type EventType int

const (
	EventJoin EventType = iota
	EventNewGame
	EventRoll
	EventHold
	EventPreview
	EventScore
	EventHint
	EventConnLost
	EventClose
)

// Event is a message to the session actor.
type Event struct {
	Type      EventType
	Die       int
	Category  yatzy.Category
	Timestamp time.Time
	Response  chan error
}

// GameEndInfo is emitted once a game reaches game over.
type GameEndInfo struct {
	SessionID string
	GameID    string
	UserID    uint64
	Totals    yatzy.Totals
	History   []yatzy.RoundRecord
}

type GameEndHook func(info GameEndInfo)

// Options tunes a session. Zero values pick defaults.
type Options struct {
	// NewConfig returns the engine config for each new game. Defaults to a
	// time-seeded game.
	NewConfig func() yatzy.Config
	// Profile selects the advisor used for hints.
	Profile string
}

var ErrSessionClosed = errors.New("session closed")

func New(
	id string,
	userID uint64,
	username string,
	sendFn func(userID uint64, data []byte),
	ledgerService ledger.Service,
	opts Options,
) (*Session, error) {
	if opts.NewConfig == nil {
		opts.NewConfig = func() yatzy.Config { return yatzy.Config{} }
	}
	if sendFn == nil {
		sendFn = func(uint64, []byte) {}
	}

	profile := advisor.LookupProfile(opts.Profile)
	s := &Session{
		ID:         id,
		UserID:     userID,
		Username:   username,
		online:     true,
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		send:       sendFn,
		ledger:     ledgerService,
		newConfig:  opts.NewConfig,
		brain:      advisor.NewRuleBrain(profile, time.Now().UnixNano()),
		ledgerWait: 3 * time.Second,
		logger:     log.With().Str("session", id).Uint64("user", userID).Logger(),
	}
	if err := s.resetGameLocked(); err != nil {
		return nil, err
	}

	go s.run()
	s.logger.Info().Str("game", s.gameID).Msg("session created")
	return s, nil
}

func (s *Session) run() {
	for {
		select {
		case event := <-s.events:
			err := s.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
			if event.Type == EventClose {
				s.Stop()
			}
		case <-s.done:
			s.logger.Debug().Msg("actor stopped")
			return
		}
	}
}

func (s *Session) handleEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && e.Type != EventClose {
		return ErrSessionClosed
	}
	if e.Type != EventConnLost && e.Type != EventClose {
		s.online = true
		s.offlineSince = time.Time{}
	}

	switch e.Type {
	case EventJoin:
		s.sendLocked(protocol.TypeSnapshot, protocol.SnapshotPayload(s.game.Snapshot()))
		return nil
	case EventNewGame:
		return s.handleNewGame()
	case EventRoll:
		return s.handleRoll()
	case EventHold:
		return s.handleHold(e.Die)
	case EventPreview:
		return s.handlePreview(e.Category)
	case EventScore:
		return s.handleScore(e.Category)
	case EventHint:
		return s.handleHint()
	case EventConnLost:
		s.online = false
		s.offlineSince = e.Timestamp
		return nil
	case EventClose:
		// done is closed by run once the caller has its response.
		s.closed = true
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (s *Session) handleNewGame() error {
	if err := s.resetGameLocked(); err != nil {
		return err
	}
	s.logger.Info().Str("game", s.gameID).Msg("new game")
	s.sendLocked(protocol.TypeSnapshot, protocol.SnapshotPayload(s.game.Snapshot()))
	return nil
}

func (s *Session) handleRoll() error {
	used, err := s.game.Roll()
	if err != nil {
		return err
	}
	faces, held := s.game.Dice()
	s.commitLocked(protocol.TypeRollResult, protocol.RollPayload(used, faces, held))
	return nil
}

func (s *Session) handleHold(die int) error {
	held, err := s.game.ToggleHold(die)
	if err != nil {
		return err
	}
	s.commitLocked(protocol.TypeHoldResult, protocol.HoldPayload(die, held))
	return nil
}

func (s *Session) handlePreview(c yatzy.Category) error {
	points, err := s.game.PreviewScore(c)
	if err != nil {
		return err
	}
	s.sendLocked(protocol.TypePreviewResult, protocol.PreviewPayload(c, points))
	return nil
}

func (s *Session) handleScore(c yatzy.Category) error {
	res, err := s.game.CommitScore(c)
	if err != nil {
		return err
	}
	s.commitLocked(protocol.TypeScoreResult, protocol.ScorePayload(res))
	if res.Phase == yatzy.PhaseGameOver {
		s.handleGameOver(res.Totals)
	}
	return nil
}

func (s *Session) handleHint() error {
	if s.game.IsOver() {
		return yatzy.ErrGameOver
	}
	d := s.brain.Decide(advisor.ViewOf(s.game.Snapshot()))
	s.sendLocked(protocol.TypeHintResult, codec.HintPayload(d, s.brain.Name()))
	return nil
}

func (s *Session) handleGameOver(totals yatzy.Totals) {
	s.commitLocked(protocol.TypeGameOver, protocol.GameOverPayload(totals))
	s.logger.Info().
		Str("game", s.gameID).
		Int("grand_total", totals.GrandTotal).
		Msg("game over")

	history := s.game.History()
	s.persistGame(totals, history)
	s.dispatchGameEndHooks(GameEndInfo{
		SessionID: s.ID,
		GameID:    s.gameID,
		UserID:    s.UserID,
		Totals:    totals,
		History:   history,
	})
}

// persistGame writes the finished game and its tape. Unfinished games are
// never written.
func (s *Session) persistGame(totals yatzy.Totals, history []yatzy.RoundRecord) {
	if s.ledger == nil {
		return
	}
	rounds := make([]any, 0, len(history))
	for _, r := range history {
		rounds = append(rounds, map[string]any{
			"round":    r.Round,
			"category": r.Category.String(),
			"points":   r.Points,
		})
	}
	rec := ledger.GameRecord{
		GameID:     s.gameID,
		UserID:     s.UserID,
		Username:   s.Username,
		PlayedAt:   time.Now().UTC(),
		GrandTotal: totals.GrandTotal,
		Summary: map[string]any{
			"upper_sum":   totals.UpperSum,
			"bonus":       totals.Bonus,
			"lower_sum":   totals.LowerSum,
			"grand_total": totals.GrandTotal,
			"rounds":      rounds,
		},
		Events: append([]ledger.EventItem(nil), s.tape...),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.ledgerWait)
	defer cancel()
	if err := s.ledger.RecordGame(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("game", s.gameID).Msg("record game failed")
	}
}

func (s *Session) dispatchGameEndHooks(info GameEndInfo) {
	hooks := append([]GameEndHook(nil), s.endHooks...)
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		go func(cb GameEndHook) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error().Interface("panic", r).Msg("game end hook panic")
				}
			}()
			cb(info)
		}(hook)
	}
}

func (s *Session) resetGameLocked() error {
	game, err := yatzy.NewGame(s.newConfig())
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	s.game = game
	s.gameID = uuid.NewString()
	s.tape = nil
	s.tapeSeq = 0
	s.tapeLocked(protocol.TypeSnapshot, protocol.SnapshotPayload(game.Snapshot()))
	return nil
}

// SubmitEvent hands e to the actor and waits for its result.
func (s *Session) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	select {
	case s.events <- e:
	case <-s.done:
		return ErrSessionClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-s.done:
		select {
		case err := <-e.Response:
			return err
		default:
			return ErrSessionClosed
		}
	}
}

// Stop shuts down the session actor.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	s.closed = true
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// IsIdleFor reports whether the session is closed or has had no attached
// connection for at least ttl.
func (s *Session) IsIdleFor(ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return true
	}
	if s.online || s.offlineSince.IsZero() {
		return false
	}
	return time.Since(s.offlineSince) >= ttl
}

func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) GameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameID
}

// Snapshot returns the current game state.
func (s *Session) Snapshot() yatzy.Snapshot {
	s.mu.RLock()
	game := s.game
	s.mu.RUnlock()
	return game.Snapshot()
}

// AddGameEndHook registers a callback run after each finished game.
func (s *Session) AddGameEndHook(hook GameEndHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endHooks = append(s.endHooks, hook)
}

func (s *Session) nextSeq() uint64 {
	s.serverSeq++
	return s.serverSeq
}

// sendLocked encodes and delivers one envelope.
func (s *Session) sendLocked(msgType string, payload map[string]any) {
	env := codec.WrapServerEnvelope(s.ID, s.nextSeq(), msgType, payload)
	data, err := env.Marshal()
	if err != nil {
		s.logger.Error().Err(err).Str("type", msgType).Msg("encode envelope failed")
		return
	}
	s.send(s.UserID, data)
}

// commitLocked delivers a state change and appends it to the game tape.
// Joins, previews and hints change nothing and stay off the tape.
func (s *Session) commitLocked(msgType string, payload map[string]any) {
	s.sendLocked(msgType, payload)
	s.tapeLocked(msgType, payload)
}

// tapeLocked appends one envelope to the game tape, which has the same shape
// as a generated replay tape: the opening snapshot, then every state change.
func (s *Session) tapeLocked(msgType string, payload map[string]any) {
	s.tapeSeq++
	env := codec.WrapServerEnvelope(s.gameID, s.tapeSeq, msgType, payload)
	data, err := env.Marshal()
	if err != nil {
		s.logger.Error().Err(err).Str("type", msgType).Msg("encode tape envelope failed")
		return
	}
	ts := env.TsMs
	s.tape = append(s.tape, ledger.EventItem{
		Seq:         env.Seq,
		EventType:   msgType,
		EnvelopeB64: base64.StdEncoding.EncodeToString(data),
		ServerTsMs:  &ts,
	})
}
