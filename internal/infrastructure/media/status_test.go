package media

import (
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   Outcome
	}{
		{"completed", "completed", OutcomeCompleted},
		{"succeeded", "succeeded", OutcomeCompleted},
		{"success", "success", OutcomeCompleted},
		{"done", "done", OutcomeCompleted},
		{"mixed case", "Completed", OutcomeCompleted},
		{"padded", " SUCCESS ", OutcomeCompleted},
		{"failed", "failed", OutcomeFailed},
		{"error", "error", OutcomeFailed},
		{"queued", "queued", OutcomePending},
		{"processing", "processing", OutcomePending},
		{"unknown", "banana", OutcomePending},
		{"empty", "", OutcomePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.status); got != tt.want {
				t.Errorf("ClassifyStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDiscoverResultURL(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			"top-level video_url",
			map[string]any{"video_url": "https://cdn/a.mp4", "url": "https://cdn/b.mp4"},
			"https://cdn/a.mp4",
		},
		{
			"draft_info downloadable_url",
			map[string]any{
				"detail": map[string]any{
					"draft_info": map[string]any{"downloadable_url": "https://cdn/draft.mp4"},
				},
				"url": "https://cdn/b.mp4",
			},
			"https://cdn/draft.mp4",
		},
		{
			"top-level url",
			map[string]any{"url": "https://cdn/b.mp4"},
			"https://cdn/b.mp4",
		},
		{
			"nested data video_url",
			map[string]any{"data": map[string]any{"video_url": "https://cdn/c.mp4"}},
			"https://cdn/c.mp4",
		},
		{
			"nested data url",
			map[string]any{"data": map[string]any{"url": "https://cdn/d.mp4"}},
			"https://cdn/d.mp4",
		},
		{
			"nothing",
			map[string]any{"status": "completed"},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscoverResultURL(tt.payload); got != tt.want {
				t.Errorf("DiscoverResultURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTaskID(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"top id", map[string]any{"id": "task-1"}, "task-1"},
		{"top task_id", map[string]any{"task_id": "task-2"}, "task-2"},
		{"detail id", map[string]any{"detail": map[string]any{"id": "task-3"}}, "task-3"},
		{"data id", map[string]any{"data": map[string]any{"id": "task-4"}}, "task-4"},
		{"data task_id", map[string]any{"data": map[string]any{"task_id": "task-5"}}, "task-5"},
		{"data task id", map[string]any{"data": map[string]any{"task": map[string]any{"id": "task-6"}}}, "task-6"},
		{"missing", map[string]any{"status": "queued"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTaskID(tt.payload); got != tt.want {
				t.Errorf("ExtractTaskID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFailReason(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"fail_reason", map[string]any{"fail_reason": "nsfw"}, "nsfw"},
		{"error string", map[string]any{"error": "quota exceeded"}, "quota exceeded"},
		{"error object", map[string]any{"error": map[string]any{"message": "bad prompt"}}, "bad prompt"},
		{"missing", map[string]any{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailReason(tt.payload); got != tt.want {
				t.Errorf("FailReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressValue(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"float", map[string]any{"progress": float64(42)}, 42},
		{"int", map[string]any{"progress": 7}, 7},
		{"percent string", map[string]any{"progress": "85%"}, 85},
		{"plain string", map[string]any{"progress": "12"}, 12},
		{"garbage string", map[string]any{"progress": "n/a"}, 0},
		{"missing", map[string]any{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressValue(tt.payload); got != tt.want {
				t.Errorf("ProgressValue() = %d, want %d", got, tt.want)
			}
		})
	}
}
