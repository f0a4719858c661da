package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "short-director-api/pkg/errors"
)

func TestFormatterRegistrySearch(t *testing.T) {
	registry := NewFormatterRegistry(NewKieFormatter(NewClient(0)), NewYiFormatter(NewClient(0), nil))

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"kie", "https://api.kie.ai/api/v1", "Kie"},
		{"kie trailing slash", "https://api.kie.ai/api/v1/", "Kie"},
		{"kie upper case", "HTTPS://API.KIE.AI/api/v1", "Kie"},
		{"yi", "https://api.apiyi.com/v1", "Yi"},
		{"openai not matched", "https://api.openai.com/v1", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := registry.Search(tt.baseURL)
			got := ""
			if f != nil {
				got = f.Name()
			}
			if got != tt.want {
				t.Errorf("Search(%q) = %q, want %q", tt.baseURL, got, tt.want)
			}
		})
	}
}

func TestKieCreateRequiresImage(t *testing.T) {
	f := NewKieFormatter(NewClient(0))
	_, err := f.Create(context.Background(), Auth{BaseURL: kieBaseURL}, VideoRequest{Prompt: "a cat"})

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeReferenceNotReady {
		t.Fatalf("err = %v, want reference not ready", err)
	}
}

func TestKieCreate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/createTask" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-kie" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"code":200,"data":{"taskId":"kie-42"}}`))
	}))
	defer srv.Close()

	f := NewKieFormatter(NewClient(0))
	taskID, err := f.Create(context.Background(), Auth{BaseURL: srv.URL, APIKey: "sk-kie"}, VideoRequest{
		Prompt:    "a cat",
		Seconds:   10,
		Size:      "9:16",
		ImageURLs: []string{"https://cdn/ref.png", "https://cdn/extra.png"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if taskID != "kie-42" {
		t.Errorf("taskID = %q", taskID)
	}

	input, _ := captured["input"].(map[string]any)
	if input == nil {
		t.Fatal("request missing input object")
	}
	if input["n_frames"] != "10" {
		t.Errorf("n_frames = %v, want 10", input["n_frames"])
	}
	if input["aspect_ratio"] != "portrait" {
		t.Errorf("aspect_ratio = %v, want portrait", input["aspect_ratio"])
	}
	urls, _ := input["image_urls"].([]any)
	if len(urls) != 1 || urls[0] != "https://cdn/ref.png" {
		t.Errorf("image_urls = %v, want single first reference", urls)
	}
}

func TestKieQuery(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus string
		wantURL    string
		wantReason string
	}{
		{
			"success",
			`{"code":200,"data":{"state":"success","resultJson":"{\"resultUrls\":[\"https://cdn/out.mp4\"]}"}}`,
			"completed", "https://cdn/out.mp4", "",
		},
		{
			"fail",
			`{"code":200,"data":{"state":"fail","failMsg":"nsfw"}}`,
			"failed", "", "nsfw",
		},
		{
			"generating",
			`{"code":200,"data":{"state":"generating"}}`,
			"processing", "", "",
		},
		{
			"api error",
			`{"code":500,"message":"boom"}`,
			"failed", "", "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("taskId"); got != "kie-42" {
					t.Errorf("taskId = %q", got)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewKieFormatter(NewClient(0))
			status, err := f.Query(context.Background(), Auth{BaseURL: srv.URL}, "kie-42")
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if status.VideoURL != tt.wantURL {
				t.Errorf("video URL = %q, want %q", status.VideoURL, tt.wantURL)
			}
			if status.FailReason != tt.wantReason {
				t.Errorf("fail reason = %q, want %q", status.FailReason, tt.wantReason)
			}
		})
	}
}

func TestYiConsumeStream(t *testing.T) {
	tests := []struct {
		name       string
		chunks     []string
		wantURL    string
		wantReason string
	}{
		{
			"success with url",
			[]string{
				`{"choices":[{"delta":{"content":"生成中..."}}]}`,
				`{"choices":[{"delta":{"content":"视频生成成功！[点击这里](https://cdn/yi.mp4)"}}]}`,
			},
			"https://cdn/yi.mp4", "",
		},
		{
			"failure message",
			[]string{
				`{"choices":[{"delta":{"content":"生成失败：内容违规"}}]}`,
			},
			"", "生成失败：内容违规",
		},
		{
			"stream ends without url",
			[]string{
				`{"choices":[{"delta":{"content":"排队中"}}]}`,
			},
			"", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/chat/completions" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				w.Header().Set("Content-Type", "text/event-stream")
				for _, chunk := range tt.chunks {
					w.Write([]byte("data: " + chunk + "\n\n"))
				}
				w.Write([]byte("data: [DONE]\n\n"))
			}))
			defer srv.Close()

			f := NewYiFormatter(NewClient(0), nil)
			url, reason := f.consumeStream(context.Background(), Auth{BaseURL: srv.URL, APIKey: "sk-yi"}, map[string]any{"stream": true})
			if url != tt.wantURL {
				t.Errorf("video URL = %q, want %q", url, tt.wantURL)
			}
			if reason != tt.wantReason {
				t.Errorf("fail reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}
