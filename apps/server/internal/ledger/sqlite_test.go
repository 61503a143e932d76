package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newMemoryLedger(t *testing.T, recentLimit int) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(":memory:", recentLimit)
	if err != nil {
		t.Fatalf("open sqlite ledger: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func record(id string, userID uint64, total int, playedAt time.Time) GameRecord {
	ts := playedAt.UnixMilli()
	return GameRecord{
		GameID:     id,
		UserID:     userID,
		Username:   "player",
		PlayedAt:   playedAt,
		GrandTotal: total,
		Summary:    map[string]any{"grand_total": total},
		Events: []EventItem{
			{Seq: 1, EventType: "snapshot", EnvelopeB64: "AA==", ServerTsMs: &ts},
			{Seq: 2, EventType: "game_over", EnvelopeB64: "AQ=="},
		},
	}
}

func TestSQLiteService_RecordAndQuery(t *testing.T) {
	svc := newMemoryLedger(t, 10)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, total := range []int{120, 250, 180} {
		rec := record(string(rune('a'+i)), 7, total, base.Add(time.Duration(i)*time.Minute))
		if err := svc.RecordGame(ctx, rec); err != nil {
			t.Fatalf("RecordGame %d: %v", i, err)
		}
	}
	if err := svc.RecordGame(ctx, record("other", 8, 300, base)); err != nil {
		t.Fatal(err)
	}

	recent, err := svc.ListRecent(ctx, 7, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 3 || recent[0].GameID != "c" {
		t.Fatalf("expected newest first, got %+v", recent)
	}
	if got := recent[0].Summary["grand_total"]; got != float64(180) {
		t.Fatalf("summary not round-tripped: %v", got)
	}

	top, err := svc.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(top) != 2 || top[0].GameID != "other" || top[1].GameID != "b" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	events, err := svc.GetGameEvents(ctx, 7, "a")
	if err != nil {
		t.Fatalf("GetGameEvents: %v", err)
	}
	if len(events) != 2 || events[0].Seq != 1 || events[0].ServerTsMs == nil || events[1].ServerTsMs != nil {
		t.Fatalf("unexpected events: %+v", events)
	}
	if _, err := svc.GetGameEvents(ctx, 8, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("another user's game must be hidden, got %v", err)
	}
	if _, err := svc.GetGameEvents(ctx, 7, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteService_RecordIsIdempotent(t *testing.T) {
	svc := newMemoryLedger(t, 10)
	ctx := context.Background()
	rec := record("g1", 1, 100, time.Now())
	for i := 0; i < 2; i++ {
		if err := svc.RecordGame(ctx, rec); err != nil {
			t.Fatalf("RecordGame #%d: %v", i, err)
		}
	}
	recent, _ := svc.ListRecent(ctx, 1, 10)
	if len(recent) != 1 {
		t.Fatalf("expected one game, got %d", len(recent))
	}
}

func TestSQLiteService_PrunesBeyondRecentLimit(t *testing.T) {
	svc := newMemoryLedger(t, 2)
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		if err := svc.RecordGame(ctx, record(id, 3, 50, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}
	recent, err := svc.ListRecent(ctx, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[1].GameID != "mid" {
		t.Fatalf("expected the oldest game pruned, got %+v", recent)
	}
	if _, err := svc.GetGameEvents(ctx, 3, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pruned game should be gone, got %v", err)
	}
}

func TestNoopService(t *testing.T) {
	var svc Service = &noopService{}
	ctx := context.Background()
	if err := svc.RecordGame(ctx, record("x", 1, 1, time.Now())); err != nil {
		t.Fatal(err)
	}
	items, err := svc.ListRecent(ctx, 1, 5)
	if err != nil || len(items) != 0 {
		t.Fatalf("noop ledger should stay empty: %v %v", items, err)
	}
	if _, err := svc.GetGameEvents(ctx, 1, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
