package generation

import (
	"context"
	"testing"
	"time"

	"short-director-api/internal/runtrace"
)

func newTestEmitter(t *testing.T, ctx context.Context) *Emitter {
	t.Helper()
	rec := runtrace.NewRecorder(t.TempDir(), "", 100)
	rec.Start(map[string]any{"modality": "text"})
	return NewEmitter(ctx, rec, 8)
}

func TestEmitterDeliversInOrder(t *testing.T) {
	em := newTestEmitter(t, context.Background())

	if !em.Status("starting") {
		t.Fatal("Status returned false with live consumer")
	}
	if !em.Progress(10) {
		t.Fatal("Progress returned false with live consumer")
	}
	if !em.BackendLog("working") {
		t.Fatal("BackendLog returned false with live consumer")
	}
	em.Close()

	var got []Event
	for ev := range em.Events() {
		got = append(got, ev)
	}
	wantTypes := []string{runtrace.EventStatus, runtrace.EventProgress, runtrace.EventBackendLog}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(got), len(wantTypes))
	}
	for i, ev := range got {
		if ev.Type != wantTypes[i] {
			t.Errorf("event[%d].Type = %q, want %q", i, ev.Type, wantTypes[i])
		}
	}
	if got[1].Payload != 10 {
		t.Errorf("progress payload = %v, want 10", got[1].Payload)
	}
}

func TestEmitterStopsAfterConsumerDetach(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	em := newTestEmitter(t, ctx)

	if !em.Status("starting") {
		t.Fatal("Status returned false before detach")
	}
	cancel()

	if em.Status("after detach") {
		t.Error("Emit returned true after consumer detached")
	}
	if !em.Detached() {
		t.Error("Detached() = false after cancel")
	}
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	em := newTestEmitter(t, context.Background())
	em.Close()
	em.Close()

	select {
	case _, ok := <-em.Events():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed")
	}
}

func TestEmitterRecordsEventsEvenWhenDetached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	em := newTestEmitter(t, ctx)
	cancel()

	em.Status("only in trace")
	em.Recorder().Finish(runtrace.StatusAborted, "Client disconnected")

	snap, err := em.Recorder().Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	found := false
	for _, ev := range snap.Events {
		if ev.Type == runtrace.EventStatus && ev.Payload == "only in trace" {
			found = true
		}
	}
	if !found {
		t.Error("detached emit was not captured in the trace")
	}
	if snap.Status != runtrace.StatusAborted {
		t.Errorf("status = %q, want aborted", snap.Status)
	}
}
