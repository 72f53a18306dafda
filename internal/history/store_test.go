package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	first := Record{
		ID:         uuid.NewString(),
		SceneName:  "intro",
		Status:     StatusCompleted,
		Frames:     84,
		Duration:   2.8,
		OutputPath: "/out/intro.mp4",
		StartedAt:  base,
		FinishedAt: base.Add(30 * time.Second),
	}
	second := Record{
		ID:         uuid.NewString(),
		SceneName:  "quarterly",
		Status:     StatusFailed,
		Error:      "synthesis failed for segment 2",
		StartedAt:  base.Add(time.Minute),
		FinishedAt: base.Add(2 * time.Minute),
	}
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := store.Record(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != second.ID {
		t.Fatalf("expected newest first, got %s", records[0].SceneName)
	}
	if records[0].Error != "synthesis failed for segment 2" {
		t.Fatalf("error column not preserved: %q", records[0].Error)
	}
	if records[1].Frames != 84 || records[1].Duration != 2.8 {
		t.Fatalf("numeric columns not preserved: %+v", records[1])
	}
	if !records[1].FinishedAt.Equal(first.FinishedAt) {
		t.Fatalf("timestamp not preserved: %v", records[1].FinishedAt)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		record := Record{
			ID:         uuid.NewString(),
			SceneName:  "scene",
			Status:     StatusCompleted,
			OutputPath: "/out/scene.mp4",
			StartedAt:  time.Now().UTC(),
			FinishedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := store.Record(ctx, record); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(records))
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(context.Background(), Record{SceneName: "x"}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := uuid.NewString()
	record := Record{
		ID:         id,
		SceneName:  "persisted",
		Status:     StatusCompleted,
		OutputPath: "/out/p.mp4",
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if err := store.Record(context.Background(), record); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 1 || records[0].ID != id {
		t.Fatalf("expected persisted record, got %+v", records)
	}
}
