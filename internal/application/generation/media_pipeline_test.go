package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"short-director-api/internal/config"
)

func TestClampProgress(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		current int
		want    int
	}{
		{"never regresses", 20, 45, 45},
		{"floor at 10", 3, 0, 10},
		{"cap at 99", 100, 50, 99},
		{"passes through", 60, 40, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampProgress(tt.value, tt.current); got != tt.want {
				t.Errorf("clampProgress(%d, %d) = %d, want %d", tt.value, tt.current, got, tt.want)
			}
		})
	}
}

func TestParamStringList(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   []string
	}{
		{"string slice", map[string]any{"refs": []string{"a", "b"}}, []string{"a", "b"}},
		{"any slice", map[string]any{"refs": []any{"a", 3, "b", ""}}, []string{"a", "b"}},
		{"single string", map[string]any{"refs": "a"}, []string{"a"}},
		{"empty string", map[string]any{"refs": ""}, nil},
		{"missing", map[string]any{}, nil},
		{"nil params", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paramStringList(tt.params, "refs")
			if len(got) != len(tt.want) {
				t.Fatalf("paramStringList() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("paramStringList()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParamInt(t *testing.T) {
	params := map[string]any{"seconds": float64(15), "n": 3, "size": "10"}
	if got := paramInt(params, "seconds"); got != 15 {
		t.Errorf("float param = %d, want 15", got)
	}
	if got := paramInt(params, "n"); got != 3 {
		t.Errorf("int param = %d, want 3", got)
	}
	if got := paramInt(params, "size"); got != 0 {
		t.Errorf("string param = %d, want 0", got)
	}
	if got := paramInt(nil, "seconds"); got != 0 {
		t.Errorf("nil params = %d, want 0", got)
	}
}

func heartbeatEngine(interval time.Duration) *Engine {
	return &Engine{cfg: &config.Config{
		Generation: config.GenerationConfig{
			Media: config.MediaConfig{HeartbeatInterval: interval},
		},
	}}
}

func TestRunWithHeartbeatEmitsProgressDuringBlockingCall(t *testing.T) {
	em := newTestEmitter(t, context.Background())
	e := heartbeatEngine(time.Millisecond)

	release := make(chan struct{})
	progress := 1
	done := make(chan error, 1)
	go func() {
		done <- e.runWithHeartbeat(context.Background(), em, &progress, func() error {
			<-release
			return nil
		})
	}()

	// 等心跳至少跳过一次再放行
	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-em.Events():
			if v, ok := ev.Payload.(int); ok && v > 1 {
				close(release)
				if err := <-done; err != nil {
					t.Fatalf("runWithHeartbeat: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("no heartbeat progress observed")
		}
	}
}

func TestRunWithHeartbeatPropagatesError(t *testing.T) {
	em := newTestEmitter(t, context.Background())
	e := heartbeatEngine(time.Hour)

	want := errors.New("provider exploded")
	progress := 1
	err := e.runWithHeartbeat(context.Background(), em, &progress, func() error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestRunWithHeartbeatCapsAt99(t *testing.T) {
	em := newTestEmitter(t, context.Background())
	e := heartbeatEngine(time.Microsecond)

	go func() {
		for range em.Events() {
		}
	}()

	progress := 97
	err := e.runWithHeartbeat(context.Background(), em, &progress, func() error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("runWithHeartbeat: %v", err)
	}
	if progress != 99 {
		t.Errorf("progress = %d, want capped at 99", progress)
	}
	em.Close()
}

func TestRequestValidate(t *testing.T) {
	valid := Request{Modality: ModalityVideo, Prompt: "a cat", APIKeyID: "key-1"}

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid media request", func(r *Request) {}, false},
		{"unknown modality", func(r *Request) { r.Modality = "hologram" }, true},
		{"blank prompt", func(r *Request) { r.Prompt = "  " }, true},
		{"missing api key", func(r *Request) { r.APIKeyID = "" }, true},
		{"text requires known skill", func(r *Request) { r.Modality = ModalityText; r.Skill = "nonexistent" }, true},
		{"text with known skill", func(r *Request) { r.Modality = ModalityText; r.Skill = "short-video-screenwriter" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
