package runtrace

import (
	"context"
	"testing"
	"time"
)

func writeRun(t *testing.T, dir, runID, projectID, episodeID, status string) {
	t.Helper()
	rec := NewRecorder(dir, runID, 100)
	rec.Start(map[string]any{
		"project_id": projectID,
		"episode_id": episodeID,
	})
	rec.Capture(EventStatus, "working")
	switch status {
	case StatusError:
		rec.Finish(StatusError, "boom")
	default:
		rec.Finish(StatusCompleted, "")
	}
	// 保证列表排序稳定
	time.Sleep(2 * time.Millisecond)
}

func TestStoreListFiltersByContext(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, "run_a", "proj_1", "ep_1", StatusCompleted)
	writeRun(t, dir, "run_b", "proj_1", "ep_2", StatusCompleted)
	writeRun(t, dir, "run_c", "proj_2", "ep_3", StatusError)

	store := NewStore(dir)
	ctx := context.Background()

	all, err := store.List(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	// 倒序：最后写入的在最前
	if all[0].RunID != "run_c" {
		t.Errorf("expected run_c first, got %s", all[0].RunID)
	}

	byProject, err := store.List(ctx, "proj_1", "", 0)
	if err != nil {
		t.Fatalf("List by project: %v", err)
	}
	if len(byProject) != 2 {
		t.Fatalf("expected 2 runs for proj_1, got %d", len(byProject))
	}

	byEpisode, err := store.List(ctx, "proj_1", "ep_2", 0)
	if err != nil {
		t.Fatalf("List by episode: %v", err)
	}
	if len(byEpisode) != 1 || byEpisode[0].RunID != "run_b" {
		t.Fatalf("expected only run_b, got %+v", byEpisode)
	}
	if byEpisode[0].StartedAt == "" {
		t.Error("expected formatted started_at")
	}
}

func TestStoreListClampsLimit(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"run_1", "run_2", "run_3"} {
		writeRun(t, dir, id, "p", "", StatusCompleted)
	}

	store := NewStore(dir)
	got, err := store.List(context.Background(), "", "", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit 2, got %d", len(got))
	}
}

func TestStoreListEmptyDirectory(t *testing.T) {
	store := NewStore(t.TempDir() + "/never-created")
	got, err := store.List(context.Background(), "", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}

func TestStoreGet(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, "run_get", "proj_9", "", StatusError)

	store := NewStore(dir)
	rec, err := store.Get(context.Background(), "run_get")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.RunID != "run_get" {
		t.Errorf("run id = %s", rec.RunID)
	}
	if rec.Status != StatusError {
		t.Errorf("status = %s, want %s", rec.Status, StatusError)
	}
	if len(rec.Events) == 0 {
		t.Error("expected captured events in record")
	}
}

func TestStoreGetMissingRun(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Get(context.Background(), "run_missing")
	if err == nil {
		t.Fatal("expected error for missing run")
	}
}
