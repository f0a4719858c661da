package chain

import (
	"context"
	"testing"

	workflowskill "short-director-api/internal/workflow/skill"
)

func TestBuildSkillModelOptions(t *testing.T) {
	temp := 0.7
	maxTokens := 2048

	structured := &SkillInput{
		Skill:       workflowskill.Skill{Name: "screenwriter", Structured: true},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	if got := len(buildSkillModelOptions(structured, true)); got != 3 {
		t.Errorf("structured with format enabled: %d options, want 3", got)
	}
	if got := len(buildSkillModelOptions(structured, false)); got != 2 {
		t.Errorf("structured with format disabled: %d options, want 2", got)
	}

	plain := &SkillInput{Skill: workflowskill.Skill{Name: "video_prompt"}}
	if got := len(buildSkillModelOptions(plain, true)); got != 0 {
		t.Errorf("plain skill: %d options, want 0", got)
	}

	if got := len(buildSkillModelOptions(nil, true)); got != 0 {
		t.Errorf("nil input: %d options, want 0", got)
	}
}

func TestInvokeRejectsMissingModel(t *testing.T) {
	c := NewSkillChain(nil)
	if _, err := c.Invoke(context.Background(), &SkillInput{}); err == nil {
		t.Fatal("expected error for unconfigured factory")
	}

	var nilChain *SkillChain
	if _, err := nilChain.Invoke(context.Background(), &SkillInput{}); err == nil {
		t.Fatal("expected error for nil chain")
	}
}

func TestFormatSkillMessagesFillsMissingVars(t *testing.T) {
	msgs, err := formatSkillMessages(context.Background(), &SkillInput{
		Skill: workflowskill.Skill{PromptID: "connection_test_v1"},
		Vars:  map[string]any{"prompt": "ping"},
	})
	if err != nil {
		t.Fatalf("formatSkillMessages: %v", err)
	}
	if len(msgs) == 0 {
		t.Fatal("expected formatted messages")
	}
}

func TestFormatSkillMessagesUnknownPrompt(t *testing.T) {
	_, err := formatSkillMessages(context.Background(), &SkillInput{
		Skill: workflowskill.Skill{PromptID: "no_such_prompt"},
	})
	if err == nil {
		t.Fatal("expected error for unknown prompt id")
	}
}
