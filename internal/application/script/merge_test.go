package script

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestMergePoolIDMatchSubstitutesVerbatim(t *testing.T) {
	poolChar := Item{"id": "c1", "name": "Mira", "description": "original description", "image_url": "https://cdn/x.png"}
	pool := &Pool{Characters: []Item{poolChar}}

	incoming := NewDocument()
	incoming.Characters = []Item{{"id": "c1", "name": "Mira (edited)", "description": "model rewrote this"}}

	merged := Merge(pool, NewDocument(), incoming, nil)

	if len(merged.Characters) != 1 {
		t.Fatalf("characters = %d, want 1", len(merged.Characters))
	}
	if !reflect.DeepEqual(merged.Characters[0], poolChar) {
		t.Errorf("pool object was not substituted verbatim: %+v", merged.Characters[0])
	}
}

func TestMergePoolNameMatchCaseInsensitive(t *testing.T) {
	poolChar := Item{"id": "c1", "name": "Mira"}
	pool := &Pool{Characters: []Item{poolChar}}

	incoming := NewDocument()
	incoming.Characters = []Item{{"id": "c9", "name": "  mi ra "}}

	merged := Merge(pool, NewDocument(), incoming, nil)

	if len(merged.Characters) != 1 {
		t.Fatalf("characters = %d, want 1", len(merged.Characters))
	}
	if merged.Characters[0].ID() != "c1" {
		t.Errorf("got id %q, want existing c1", merged.Characters[0].ID())
	}
}

func TestMergePreservesExistingAppendsNew(t *testing.T) {
	existing := NewDocument()
	existing.Scenes = []Item{{"id": "s1", "location_name": "Harbor", "description": "user-edited"}}

	incoming := NewDocument()
	incoming.Scenes = []Item{
		{"id": "s9", "location_name": "harbor", "description": "regenerated"}, // matches existing by name
		{"id": "s2", "location_name": "Rooftop"},                              // genuinely new
	}

	merged := Merge(&Pool{}, existing, incoming, nil)

	if len(merged.Scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(merged.Scenes))
	}
	if merged.Scenes[0].Field("description") != "user-edited" {
		t.Errorf("existing scene fields overwritten: %+v", merged.Scenes[0])
	}
	if merged.Scenes[1].ID() != "s2" {
		t.Errorf("new scene not appended: %+v", merged.Scenes[1])
	}
}

func TestMergeDedupeFirstWins(t *testing.T) {
	incoming := NewDocument()
	incoming.Characters = []Item{
		{"id": "c1", "name": "Ash"},
		{"id": "c1", "name": "Ash again"},
		{"id": "c2", "name": "ash"},
	}

	merged := Merge(&Pool{}, NewDocument(), incoming, nil)

	if len(merged.Characters) != 1 {
		t.Fatalf("characters = %d, want 1 after dedupe: %+v", len(merged.Characters), merged.Characters)
	}
	if merged.Characters[0].Field("name") != "Ash" {
		t.Errorf("first occurrence did not win: %+v", merged.Characters[0])
	}
}

func TestMergeMintsIDForNewEntries(t *testing.T) {
	incoming := NewDocument()
	incoming.Storyboard = []Item{{"action": "pan across the skyline"}}

	merged := Merge(&Pool{}, NewDocument(), incoming, nil)

	if len(merged.Storyboard) != 1 {
		t.Fatalf("storyboard = %d, want 1", len(merged.Storyboard))
	}
	if merged.Storyboard[0].ID() == "" {
		t.Error("new entry did not receive an id")
	}
}

func TestMergeIdentityNeverMutated(t *testing.T) {
	existing := NewDocument()
	existing.Characters = []Item{{"id": "c1", "name": "Mira"}}

	incoming := NewDocument()
	incoming.Characters = []Item{{"id": "c1", "name": "Mira"}}

	merged := Merge(&Pool{}, existing, incoming, nil)
	if merged.Characters[0].ID() != "c1" {
		t.Errorf("identity mutated: %q", merged.Characters[0].ID())
	}
}

func TestDocumentRoundTripPreservesExtras(t *testing.T) {
	raw := []byte(`{"characters":[{"id":"c1","name":"Mira"}],"scenes":[],"storyboard":[],"title":"Episode 1","meta":{"lang":"zh"}}`)

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Extra["title"] != "Episode 1" {
		t.Errorf("extra key lost: %+v", doc.Extra)
	}

	out, err := json.Marshal(&doc)
	if err != nil {
		t.Fatal(err)
	}
	var round map[string]any
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatal(err)
	}
	if round["title"] != "Episode 1" {
		t.Errorf("extra key not re-serialized: %v", round)
	}
	if _, ok := round["characters"].([]any); !ok {
		t.Errorf("characters missing after round trip: %v", round)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Mira", "mira"},
		{"  mi ra ", "mira"},
		{"夜市　摊位", "夜市摊位"},
		{"Rooftop\nGarden", "rooftopgarden"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeMintsIDsFromDeclaredPrefixes(t *testing.T) {
	incoming := NewDocument()
	incoming.Storyboard = []Item{{"action": "open the door"}}
	incoming.Characters = []Item{{"name": "Mira"}}

	merged := Merge(&Pool{}, NewDocument(), incoming, map[string]string{"storyboard": "sb"})

	if id := merged.Storyboard[0].ID(); !strings.HasPrefix(id, "sb_") {
		t.Errorf("storyboard id = %q, want declared prefix sb_", id)
	}
	// 未声明的集合沿用内置前缀
	if id := merged.Characters[0].ID(); !strings.HasPrefix(id, "char_") {
		t.Errorf("character id = %q, want fallback prefix char_", id)
	}

	fresh := NewDocument()
	fresh.Storyboard = []Item{{"action": "close the door"}}
	merged = Merge(&Pool{}, NewDocument(), fresh, nil)
	if id := merged.Storyboard[0].ID(); !strings.HasPrefix(id, "shot_") {
		t.Errorf("storyboard id without declared prefixes = %q, want shot_", id)
	}
}
