package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"short-director-api/internal/infrastructure/provider"
	apperrors "short-director-api/pkg/errors"
)

func pollConfig(baseURL string) provider.Config {
	return provider.Config{
		Platform: provider.PlatformOpenAI,
		BaseURL:  baseURL,
		Endpoints: map[provider.Capability]string{
			provider.CapabilityVideoPoll: "/videos/{task_id}",
		},
	}
}

func TestPollVideoCompletes(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/task-9" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"status":"in_progress","progress":40}`))
			return
		}
		w.Write([]byte(`{"status":"completed","video_url":"https://cdn/v.mp4"}`))
	}))
	defer srv.Close()

	var updates []PollUpdate
	url, _, err := NewClient(0).PollVideo(context.Background(), pollConfig(srv.URL), "sk-test", "task-9",
		PollOptions{Interval: time.Millisecond, MaxAttempts: 10},
		func(u PollUpdate) { updates = append(updates, u) })
	if err != nil {
		t.Fatalf("PollVideo: %v", err)
	}
	if url != "https://cdn/v.mp4" {
		t.Errorf("url = %q", url)
	}
	if len(updates) != 3 {
		t.Errorf("got %d updates, want 3", len(updates))
	}
	if updates[0].Progress != 40 {
		t.Errorf("first update progress = %d, want 40", updates[0].Progress)
	}
}

func TestPollVideoTimesOutAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := NewClient(0).PollVideo(context.Background(), pollConfig(srv.URL), "sk-test", "task-1",
		PollOptions{Interval: time.Millisecond, MaxAttempts: 4}, nil)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeMediaTimeout {
		t.Fatalf("err = %v, want media timeout", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("made %d requests, want 4", got)
	}
}

func TestPollVideoCompletedWithoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"completed"}`))
	}))
	defer srv.Close()

	_, payload, err := NewClient(0).PollVideo(context.Background(), pollConfig(srv.URL), "sk-test", "task-1",
		PollOptions{Interval: time.Millisecond, MaxAttempts: 3}, nil)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeResultURLMissing {
		t.Fatalf("err = %v, want result URL missing", err)
	}
	if payload == nil {
		t.Error("expected last payload to be returned")
	}
}

func TestPollVideoFailedTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","fail_reason":"content policy"}`))
	}))
	defer srv.Close()

	_, _, err := NewClient(0).PollVideo(context.Background(), pollConfig(srv.URL), "sk-test", "task-1",
		PollOptions{Interval: time.Millisecond, MaxAttempts: 3}, nil)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeProviderError {
		t.Fatalf("err = %v, want provider error", err)
	}
	if appErr.Message != "Video generation failed: content policy" {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestPollVideoUnsupportedPlatform(t *testing.T) {
	cfg := provider.Config{Platform: provider.PlatformOllama, BaseURL: "http://127.0.0.1:11434/api"}
	_, _, err := NewClient(0).PollVideo(context.Background(), cfg, "", "task-1", PollOptions{}, nil)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeCapabilityUnsupported {
		t.Fatalf("err = %v, want capability unsupported", err)
	}
}

func TestPollVideoRespectsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewClient(0).PollVideo(ctx, pollConfig(srv.URL), "sk-test", "task-1",
		PollOptions{Interval: time.Second, MaxAttempts: 10}, nil)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
