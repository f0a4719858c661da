package generation

import (
	"testing"

	"short-director-api/internal/application/script"
	apperrors "short-director-api/pkg/errors"
)

func refDoc() *script.Document {
	return script.FromMap(map[string]any{
		"characters": []any{
			map[string]any{"id": "char_1", "name": "林小雨", "image_url": "https://cdn/lin.png"},
			map[string]any{"id": "char_2", "name": "陈默"},
		},
		"scenes": []any{
			map[string]any{"id": "scene_1", "location_name": "废弃医院", "image_url": "https://cdn/hospital.png"},
		},
	})
}

func TestResolveReferencesText(t *testing.T) {
	refs, err := ResolveReferences(refDoc(), "{{char_1}}走进{{scene_1}}，遇见{{char_2}}和{{char_99}}", false)
	if err != nil {
		t.Fatalf("ResolveReferences: %v", err)
	}
	want := "林小雨走进废弃医院，遇见陈默和{{char_99}}"
	if refs.Prompt != want {
		t.Errorf("prompt = %q, want %q", refs.Prompt, want)
	}
	if len(refs.ImageURLs) != 0 {
		t.Errorf("text mode collected images: %v", refs.ImageURLs)
	}
}

func TestResolveReferencesCollectsImages(t *testing.T) {
	refs, err := ResolveReferences(refDoc(), "{{char_1}}在{{scene_1}}，再次出现{{char_1}}", true)
	if err != nil {
		t.Fatalf("ResolveReferences: %v", err)
	}
	want := []string{"https://cdn/lin.png", "https://cdn/hospital.png"}
	if len(refs.ImageURLs) != len(want) {
		t.Fatalf("image URLs = %v, want %v", refs.ImageURLs, want)
	}
	for i := range want {
		if refs.ImageURLs[i] != want[i] {
			t.Errorf("image URL[%d] = %q, want %q", i, refs.ImageURLs[i], want[i])
		}
	}
}

func TestResolveReferencesMissingImageFailsFast(t *testing.T) {
	_, err := ResolveReferences(refDoc(), "{{char_2}}的特写", true)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeReferenceNotReady {
		t.Fatalf("err = %v, want reference not ready", err)
	}
}

func TestResolveReferencesUnknownTagNeverFails(t *testing.T) {
	refs, err := ResolveReferences(refDoc(), "{{char_404}}的特写", true)
	if err != nil {
		t.Fatalf("ResolveReferences: %v", err)
	}
	if refs.Prompt != "{{char_404}}的特写" {
		t.Errorf("prompt = %q, want tag left verbatim", refs.Prompt)
	}
}

func TestResolveReferencesNilDocument(t *testing.T) {
	refs, err := ResolveReferences(nil, "{{char_1}}的特写", true)
	if err != nil {
		t.Fatalf("ResolveReferences: %v", err)
	}
	if refs.Prompt != "{{char_1}}的特写" {
		t.Errorf("prompt = %q", refs.Prompt)
	}
}
