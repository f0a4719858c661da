package script

import (
	"testing"

	apperrors "short-director-api/pkg/errors"
)

func TestReplaceCommand(t *testing.T) {
	doc := map[string]any{"meta": map[string]any{"title": "old"}}

	if err := ApplyCommands(doc, Replace{Path: "meta.title", Value: "new"}); err != nil {
		t.Fatal(err)
	}
	if doc["meta"].(map[string]any)["title"] != "new" {
		t.Errorf("value not replaced: %v", doc)
	}
}

func TestReplaceCreatesIntermediate(t *testing.T) {
	doc := map[string]any{}

	if err := ApplyCommands(doc, Replace{Path: "settings.video.duration", Value: 10}); err != nil {
		t.Fatal(err)
	}
	settings := doc["settings"].(map[string]any)
	video := settings["video"].(map[string]any)
	if video["duration"] != 10 {
		t.Errorf("nested value not created: %v", doc)
	}
}

func TestReplaceFailsOnNonContainerSegment(t *testing.T) {
	doc := map[string]any{"meta": "just a string"}

	err := ApplyCommands(doc, Replace{Path: "meta.title", Value: "new"})
	if err == nil {
		t.Fatal("expected error when intermediate segment is not an object")
	}
	if !apperrors.IsAppError(err) {
		t.Errorf("expected AppError, got %T", err)
	}
}

func TestAppendToList(t *testing.T) {
	doc := map[string]any{"storyboard": []any{map[string]any{"id": "sh1"}}}

	cmd := AppendToList{Path: "storyboard", Items: []any{map[string]any{"id": "sh2"}}}
	if err := ApplyCommands(doc, cmd); err != nil {
		t.Fatal(err)
	}
	list := doc["storyboard"].([]any)
	if len(list) != 2 {
		t.Errorf("list = %d entries, want 2", len(list))
	}
}

func TestAppendToMissingListCreates(t *testing.T) {
	doc := map[string]any{}

	if err := ApplyCommands(doc, AppendToList{Path: "notes", Items: []any{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	if len(doc["notes"].([]any)) != 2 {
		t.Errorf("list not created: %v", doc)
	}
}

func TestAppendToNonListFails(t *testing.T) {
	doc := map[string]any{"notes": "scalar"}

	if err := ApplyCommands(doc, AppendToList{Path: "notes", Items: []any{"a"}}); err == nil {
		t.Fatal("expected error when target is not a list")
	}
}

func TestUpdateItem(t *testing.T) {
	doc := NewDocument()
	doc.Characters = []Item{{"id": "c1", "name": "Mira", "description": "old"}}

	err := UpdateItem(doc, "c1", map[string]any{"description": "new", "id": "hijack"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Characters[0].Field("description") != "new" {
		t.Errorf("field not updated: %+v", doc.Characters[0])
	}
	if doc.Characters[0].ID() != "c1" {
		t.Errorf("id mutated through update: %q", doc.Characters[0].ID())
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	err := UpdateItem(NewDocument(), "missing", map[string]any{"x": 1})
	if err == nil {
		t.Fatal("expected not-found error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeScriptItemNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeScriptItemNotFound)
	}
}

func TestDeleteItem(t *testing.T) {
	doc := NewDocument()
	doc.Scenes = []Item{
		{"id": "s1", "location_name": "Harbor"},
		{"id": "s2", "location_name": "Rooftop"},
	}

	if err := DeleteItem(doc, "s1"); err != nil {
		t.Fatal(err)
	}
	if len(doc.Scenes) != 1 || doc.Scenes[0].ID() != "s2" {
		t.Errorf("wrong scene deleted: %+v", doc.Scenes)
	}

	if err := DeleteItem(doc, "s1"); err == nil {
		t.Error("expected not-found on second delete")
	}
}
