package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptScreenwriterV1    PromptID = "screenwriter_v1"
	PromptStoryboardMakerV1 PromptID = "storyboard_maker_v1"
	PromptPromptEngineerV1  PromptID = "prompt_engineer_v1"
	PromptVideoPromptV1     PromptID = "video_prompt_v1"
	PromptConnectionTestV1  PromptID = "connection_test_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptScreenwriterV1:
		return "templates/screenwriter_v1.system.txt", "templates/screenwriter_v1.user.txt", nil
	case PromptStoryboardMakerV1:
		return "templates/storyboard_maker_v1.system.txt", "templates/storyboard_maker_v1.user.txt", nil
	case PromptPromptEngineerV1:
		return "templates/prompt_engineer_v1.system.txt", "templates/prompt_engineer_v1.user.txt", nil
	case PromptVideoPromptV1:
		return "templates/video_prompt_v1.system.txt", "templates/video_prompt_v1.user.txt", nil
	case PromptConnectionTestV1:
		return "templates/connection_test_v1.system.txt", "templates/connection_test_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
