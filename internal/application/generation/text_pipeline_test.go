package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"short-director-api/internal/application/script"
	"short-director-api/internal/config"
	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
	"short-director-api/internal/infrastructure/provider"
	"short-director-api/internal/runtrace"
	"short-director-api/internal/workflow/chain"
	workflowport "short-director-api/internal/workflow/port"
	workflowskill "short-director-api/internal/workflow/skill"
	apperrors "short-director-api/pkg/errors"
)

// scriptedModel 按预置分片回放一次模型流
type scriptedModel struct {
	chunks []string
}

func (m *scriptedModel) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return &schema.Message{Role: schema.Assistant, Content: strings.Join(m.chunks, "")}, nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msgs := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		msgs = append(msgs, &schema.Message{Role: schema.Assistant, Content: c})
	}
	return schema.StreamReaderFromArray(msgs), nil
}

type scriptedFactory struct {
	model *scriptedModel
}

func (f *scriptedFactory) Get(context.Context, workflowport.ModelSpec) (model.BaseChatModel, error) {
	return f.model, nil
}

type captureEpisodeRepo struct {
	savedID string
	saved   map[string]any
}

func (r *captureEpisodeRepo) Create(context.Context, *entity.Episode) error { return nil }
func (r *captureEpisodeRepo) GetByID(context.Context, string) (*entity.Episode, error) {
	return nil, nil
}
func (r *captureEpisodeRepo) Update(context.Context, *entity.Episode) error { return nil }
func (r *captureEpisodeRepo) UpdateScript(_ context.Context, id string, doc map[string]any) error {
	r.savedID = id
	r.saved = doc
	return nil
}
func (r *captureEpisodeRepo) Delete(context.Context, string) error { return nil }
func (r *captureEpisodeRepo) ListByProject(context.Context, string, repository.Pagination) (*repository.PagedResult[*entity.Episode], error) {
	return nil, nil
}

func newTextEngine(m *scriptedModel, episodes repository.EpisodeRepository) *Engine {
	return &Engine{
		cfg:      &config.Config{},
		episodes: episodes,
		chain:    chain.NewSkillChain(&scriptedFactory{model: m}),
	}
}

func runTextOnce(t *testing.T, m *scriptedModel, skillName string) (runtrace.Record, error) {
	t.Helper()
	em := newTestEmitter(t, context.Background())
	eng := newTextEngine(m, nil)
	req := &Request{
		Modality: ModalityText,
		Skill:    skillName,
		Prompt:   "a door opens",
		APIKeyID: "cred_1",
	}
	key := &entity.APIKey{Key: "sk-test", Model: "gpt-4o-mini"}
	err := eng.runText(context.Background(), em, req, key, provider.Defaults(provider.PlatformOpenAI))
	snap, snapErr := em.Recorder().Snapshot()
	if snapErr != nil {
		t.Fatalf("recorder snapshot: %v", snapErr)
	}
	return snap, err
}

func TestRunTextEmptyOutputFails(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
	}{
		{"no chunks at all", nil},
		{"whitespace only", []string{"  \n\t"}},
		{"thinking only", []string{"<think>reasoning, no answer</think>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runTextOnce(t, &scriptedModel{chunks: tt.chunks}, workflowskill.NameVideoPrompt)
			if err == nil {
				t.Fatal("expected error for empty model output")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeGenerationFailed {
				t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeGenerationFailed)
			}
			if !strings.Contains(appErr.Detail, "No output") {
				t.Errorf("detail = %q, want empty-output message", appErr.Detail)
			}
		})
	}
}

func TestRunTextPlainOutputFinishes(t *testing.T) {
	rec, err := runTextOnce(t, &scriptedModel{chunks: []string{"A door ", "opens slowly."}}, workflowskill.NameVideoPrompt)
	if err != nil {
		t.Fatalf("runText: %v", err)
	}
	var sawFinish bool
	for _, ev := range rec.Events {
		if ev.Type == runtrace.EventTextFinish {
			sawFinish = true
		}
	}
	if !sawFinish {
		t.Error("expected a text_finish event")
	}
}

func TestRunTextMalformedStructuredOutputKeepsRaw(t *testing.T) {
	rec, err := runTextOnce(t, &scriptedModel{chunks: []string{"definitely ", "not json"}}, workflowskill.NameScreenwriter)
	if err == nil {
		t.Fatal("expected error for unparseable structured output")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeMalformedModelOutput {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeMalformedModelOutput)
	}
	if !strings.Contains(appErr.Detail, "definitely not json") {
		t.Errorf("detail = %q, should carry the raw model output", appErr.Detail)
	}

	var sawLog bool
	for _, ev := range rec.Events {
		if ev.Type == runtrace.EventBackendLog {
			sawLog = true
		}
	}
	if !sawLog {
		t.Error("expected a backend_log event with the raw output")
	}
}

func TestErrorMessageKeepsCause(t *testing.T) {
	cause := errors.New("pg: connection refused")

	if msg := errorMessage(cause); !strings.Contains(msg, "pg: connection refused") {
		t.Errorf("plain error message = %q, cause dropped", msg)
	}

	msg := errorMessage(apperrors.ErrLLMCallFailed.WithError(cause))
	if !strings.Contains(msg, "LLM call failed") || !strings.Contains(msg, "pg: connection refused") {
		t.Errorf("wrapped error message = %q, want message and cause", msg)
	}

	if msg := errorMessage(apperrors.ErrMalformedModelOutput.WithDetail("raw text here")); !strings.Contains(msg, "raw text here") {
		t.Errorf("detailed error message = %q, detail dropped", msg)
	}
}

func TestPersistScriptStoryboardAppendsOnly(t *testing.T) {
	repo := &captureEpisodeRepo{}
	eng := &Engine{episodes: repo}
	episode := &entity.Episode{ID: "ep_1", Script: map[string]any{
		"meta":       map[string]any{"title": "pilot"},
		"storyboard": []any{map[string]any{"id": "shot_1", "action": "open the door"}},
	}}
	existing := script.FromMap(episode.Script)
	incoming := &script.Document{Storyboard: []script.Item{{"action": "close the door"}}}
	merged := script.Merge(nil, existing, incoming, nil)
	sk, err := workflowskill.Resolve(workflowskill.NameStoryboardMaker)
	if err != nil {
		t.Fatal(err)
	}

	saved, err := eng.persistScript(context.Background(), episode, sk, existing, merged)
	if err != nil {
		t.Fatalf("persistScript: %v", err)
	}
	if repo.savedID != "ep_1" {
		t.Errorf("saved episode = %q, want ep_1", repo.savedID)
	}
	if meta, ok := saved["meta"].(map[string]any); !ok || meta["title"] != "pilot" {
		t.Error("foreign keys of the script document must survive persistence")
	}
	board, ok := saved["storyboard"].([]any)
	if !ok || len(board) != 2 {
		t.Fatalf("storyboard length = %d, want existing shot plus one appended", len(board))
	}
	first, _ := board[0].(map[string]any)
	if first["id"] != "shot_1" {
		t.Errorf("existing shot displaced: %v", board[0])
	}
}

func TestPersistScriptScreenwriterReplacesCollections(t *testing.T) {
	repo := &captureEpisodeRepo{}
	eng := &Engine{episodes: repo}
	episode := &entity.Episode{ID: "ep_2", Script: map[string]any{
		"outline":    "act one",
		"characters": []any{map[string]any{"id": "char_1", "name": "Ava"}},
	}}
	existing := script.FromMap(episode.Script)
	incoming := &script.Document{Characters: []script.Item{{"name": "Ben"}}}
	merged := script.Merge(nil, existing, incoming, nil)
	sk, err := workflowskill.Resolve(workflowskill.NameScreenwriter)
	if err != nil {
		t.Fatal(err)
	}

	saved, err := eng.persistScript(context.Background(), episode, sk, existing, merged)
	if err != nil {
		t.Fatalf("persistScript: %v", err)
	}
	if saved["outline"] != "act one" {
		t.Error("foreign keys of the script document must survive persistence")
	}
	chars, ok := saved["characters"].([]any)
	if !ok || len(chars) != 2 {
		t.Fatalf("characters length = %d, want both Ava and Ben", len(chars))
	}
}
