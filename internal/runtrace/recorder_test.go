package runtrace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFinishIdempotent(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir, "run_test_1", 0)
	rec.Start(map[string]any{"project_id": "p1"})
	rec.Capture(EventProgress, 50)
	rec.Finish(StatusCompleted, "")

	first, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	rec.Finish(StatusError, "should be ignored")
	rec.Capture(EventError, "late event, also ignored")

	second, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	if second.Status != StatusCompleted {
		t.Errorf("second finish mutated status to %q", second.Status)
	}
	if len(second.Events) != len(first.Events) {
		t.Errorf("events grew after finish: %d -> %d", len(first.Events), len(second.Events))
	}
	if second.Result["status"] != first.Result["status"] {
		t.Errorf("result changed after second finish")
	}
}

func TestFinishPromotesErrorStatus(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "run_test_2", 0)
	rec.Start(nil)
	rec.Capture(EventError, "provider exploded")
	rec.Finish(StatusCompleted, "")

	snap, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status != StatusError {
		t.Errorf("status = %q, want %q after captured error", snap.Status, StatusError)
	}
}

func TestThoughtSampling(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "run_test_3", 0)
	rec.Start(nil)

	for i := 0; i < 200; i++ {
		rec.Capture(EventThought, fmt.Sprintf("token-%d ", i))
	}

	snap, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Metrics.ThoughtChunks != 200 {
		t.Errorf("thought_chunks = %d, want 200", snap.Metrics.ThoughtChunks)
	}
	if snap.Metrics.ThoughtChars == 0 {
		t.Error("thought_chars not accumulated")
	}

	stored := 0
	for _, ev := range snap.Events {
		if ev.Type != EventThought {
			continue
		}
		stored++
		payload, ok := ev.Payload.(map[string]any)
		if !ok {
			t.Fatalf("thought payload is %T, want sampled map", ev.Payload)
		}
		if _, ok := payload["sample"]; !ok {
			t.Error("sampled thought missing sample field")
		}
		if _, ok := payload["sample_len"]; !ok {
			t.Error("sampled thought missing sample_len field")
		}
	}
	// chunks 1, 81, 161 hit the sampling period
	if stored != 3 {
		t.Errorf("stored %d thought events, want 3 of 200", stored)
	}
}

func TestThoughtMarkerAlwaysSampled(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "run_test_4", 0)
	rec.Start(nil)
	rec.Capture(EventThought, "plain")          // chunk 1, sampled by period
	rec.Capture(EventThought, "also plain")     // not sampled
	rec.Capture(EventThought, "<|SCRIPT|> x")   // marker, sampled
	rec.Capture(EventThought, "one more plain") // not sampled

	snap, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	stored := 0
	for _, ev := range snap.Events {
		if ev.Type == EventThought {
			stored++
		}
	}
	if stored != 2 {
		t.Errorf("stored %d thought events, want 2", stored)
	}
}

func TestProgressSampling(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "run_test_5", 0)
	rec.Start(nil)

	for v := 0; v <= 100; v++ {
		rec.Capture(EventProgress, v)
	}
	// repeated value must not be stored twice
	rec.Capture(EventProgress, 100)

	snap, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Metrics.ProgressUpdates != 102 {
		t.Errorf("progress_updates = %d, want 102", snap.Metrics.ProgressUpdates)
	}

	var stored []int
	for _, ev := range snap.Events {
		if ev.Type != EventProgress {
			continue
		}
		stored = append(stored, int(ev.Payload.(float64)))
	}
	// 0, 1, 5, 10, ..., 100
	want := []int{0, 1}
	for v := 5; v <= 100; v += 5 {
		want = append(want, v)
	}
	if len(stored) != len(want) {
		t.Fatalf("stored %d progress values %v, want %d", len(stored), stored, len(want))
	}
	for i := range want {
		if stored[i] != want[i] {
			t.Errorf("stored[%d] = %d, want %d", i, stored[i], want[i])
		}
	}
}

func TestEventCapEvictsOldest(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "run_test_6", 10)
	rec.Start(nil)

	for i := 0; i < 30; i++ {
		rec.Capture(EventBackendLog, fmt.Sprintf("line %d", i))
	}

	snap, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Events) != 10 {
		t.Fatalf("events = %d, want capped at 10", len(snap.Events))
	}
	last := snap.Events[len(snap.Events)-1]
	if last.Payload != "line 29" {
		t.Errorf("newest event lost, last payload = %v", last.Payload)
	}
	if snap.Metrics.BackendLogs != 30 {
		t.Errorf("backend_logs counter = %d, want 30", snap.Metrics.BackendLogs)
	}
}

func TestFlushWritesValidSnapshot(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir, "run_test_7", 0)
	rec.Start(map[string]any{"project_id": "p1", "episode_id": "e1"})
	rec.Capture(EventStatus, map[string]any{"status": "submitting"})
	rec.Finish(StatusCompleted, "")

	path := filepath.Join(dir, "run_test_7.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot file not written: %v", err)
	}
	var loaded Record
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if loaded.RunID != "run_test_7" || loaded.Status != StatusCompleted {
		t.Errorf("snapshot content wrong: %+v", loaded)
	}
	if loaded.EndedAt == nil {
		t.Error("ended_at missing from finished record")
	}

	// 临时文件不应残留
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSanitizeLongPayloads(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "run_test_8", 0)
	rec.Start(nil)

	long := strings.Repeat("x", 5000)
	list := make([]any, 200)
	for i := range list {
		list[i] = i
	}
	rec.Capture(EventBackendLog, map[string]any{"text": long, "items": list})

	snap, err := rec.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	for _, ev := range snap.Events {
		if ev.Type == EventBackendLog {
			payload = ev.Payload.(map[string]any)
		}
	}
	if payload == nil {
		t.Fatal("backend_log event not stored")
	}
	text := payload["text"].(string)
	if len([]rune(text)) > maxStringLen+1 {
		t.Errorf("string not truncated: %d runes", len([]rune(text)))
	}
	items := payload["items"].([]any)
	if len(items) > maxListLen+1 {
		t.Errorf("list not truncated: %d items", len(items))
	}
}

func TestStoreListAndGet(t *testing.T) {
	dir := t.TempDir()

	write := func(id, project, episode string, started time.Time) {
		rec := NewRecorder(dir, id, 0)
		rec.record.StartedAt = started
		rec.Start(map[string]any{"project_id": project, "episode_id": episode})
		rec.Finish(StatusCompleted, "")
	}
	write("run_a", "p1", "e1", time.Now().Add(-3*time.Hour))
	write("run_b", "p1", "e2", time.Now().Add(-2*time.Hour))
	write("run_c", "p2", "e3", time.Now().Add(-1*time.Hour))

	store := NewStore(dir)
	ctx := context.Background()

	all, err := store.List(ctx, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("list = %d runs, want 3", len(all))
	}
	if all[0].RunID != "run_c" || all[2].RunID != "run_a" {
		t.Errorf("not sorted by start time desc: %s, %s, %s", all[0].RunID, all[1].RunID, all[2].RunID)
	}

	p1, err := store.List(ctx, "p1", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(p1) != 2 {
		t.Errorf("project filter returned %d runs, want 2", len(p1))
	}

	e2, err := store.List(ctx, "p1", "e2", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(e2) != 1 || e2[0].RunID != "run_b" {
		t.Errorf("episode filter wrong: %+v", e2)
	}

	limited, err := store.List(ctx, "", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}

	full, err := store.Get(ctx, "run_b")
	if err != nil {
		t.Fatal(err)
	}
	if full.RunID != "run_b" || len(full.Events) == 0 {
		t.Errorf("full record wrong: %+v", full)
	}

	if _, err := store.Get(ctx, "run_missing"); err == nil {
		t.Error("expected not-found error for missing run")
	}
}

func TestGeneratedRunID(t *testing.T) {
	rec := NewRecorder(t.TempDir(), "", 0)
	if !strings.HasPrefix(rec.RunID(), "run_") {
		t.Errorf("generated run id %q missing prefix", rec.RunID())
	}
}
