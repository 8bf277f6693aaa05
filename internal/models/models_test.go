package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAllModels(t *testing.T) {
	models := AllModels()

	if len(models) == 0 {
		t.Error("Expected at least one model")
	}

	for _, model := range models {
		if model.Name == "" {
			t.Error("Model name should not be empty")
		}
		if model.Description == "" {
			t.Errorf("Model %s should have a description", model.Name)
		}
	}
}

func TestModelFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"gemini-2.5-flash", "gemini-2.5-flash"},
		{"gemini-2.5-pro", "gemini-2.5-pro"},
		{"gemini-9-experimental", "gemini-9-experimental"},
		{"", DefaultModel.Name},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModelFromName(tt.name).Name; got != tt.expected {
				t.Errorf("ModelFromName(%q) = %s, want %s", tt.name, got, tt.expected)
			}
		})
	}
}

func TestMessageJSONFieldNames(t *testing.T) {
	msg := Message{ID: "abc", Kind: KindIncoming, Text: "hi", IsLoading: true, IsError: true, HasFile: true}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, field := range []string{`"id":"abc"`, `"type":"incoming"`, `"text":"hi"`, `"isLoading":true`, `"isError":true`, `"hasFile":true}`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded message %s missing %s", data, field)
		}
	}
}

func TestMessageDecodeWithoutID(t *testing.T) {
	var msgs []Message
	raw := `[{"type":"outgoing","text":"hello","hasFile":false},{"type":"incoming","text":"hi there"}]`
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if !msgs[0].IsOutgoing() || !msgs[1].IsIncoming() {
		t.Errorf("kinds decoded wrong: %+v", msgs)
	}

	msgs[0].EnsureID()
	if msgs[0].ID == "" {
		t.Error("EnsureID() should assign an id")
	}
	id := msgs[0].ID
	msgs[0].EnsureID()
	if msgs[0].ID != id {
		t.Error("EnsureID() should keep an existing id")
	}
}

func TestNewMessages(t *testing.T) {
	out := NewOutgoing("hello", true)
	if !out.IsOutgoing() || !out.HasFile || out.ID == "" {
		t.Errorf("NewOutgoing() = %+v", out)
	}

	loading := NewLoading()
	if !loading.IsIncoming() || !loading.IsLoading || loading.Text != "" {
		t.Errorf("NewLoading() = %+v", loading)
	}
	if loading.ID == out.ID {
		t.Error("ids should be unique")
	}
}

func TestThemeStorage(t *testing.T) {
	tests := []struct {
		stored string
		want   Theme
	}{
		{"light_mode", ThemeLight},
		{"dark_mode", ThemeDark},
		{"", ThemeDark},
		{"garbage", ThemeDark},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			got := ThemeFromStorage(tt.stored)
			if got != tt.want {
				t.Errorf("ThemeFromStorage(%q) = %s, want %s", tt.stored, got, tt.want)
			}
		})
	}

	if ThemeLight.StorageValue() != "light_mode" || ThemeDark.StorageValue() != "dark_mode" {
		t.Error("StorageValue() mismatch")
	}
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Error("Toggle() mismatch")
	}
}

func TestParseTheme(t *testing.T) {
	if th, ok := ParseTheme("light"); !ok || th != ThemeLight {
		t.Errorf("ParseTheme(light) = %s, %v", th, ok)
	}
	if th, ok := ParseTheme("dark_mode"); !ok || th != ThemeDark {
		t.Errorf("ParseTheme(dark_mode) = %s, %v", th, ok)
	}
	if _, ok := ParseTheme("blue"); ok {
		t.Error("ParseTheme(blue) should fail")
	}
}

func TestSuggestionAt(t *testing.T) {
	if len(Suggestions) != 4 {
		t.Fatalf("expected 4 suggestions, got %d", len(Suggestions))
	}
	s, ok := SuggestionAt(1)
	if !ok || s.Text != Suggestions[0].Text {
		t.Errorf("SuggestionAt(1) = %+v, %v", s, ok)
	}
	for _, slot := range []int{0, 5, -1} {
		if _, ok := SuggestionAt(slot); ok {
			t.Errorf("SuggestionAt(%d) should be out of range", slot)
		}
	}
}

func TestInlineDataJSON(t *testing.T) {
	data, _ := json.Marshal(InlineData{MIMEType: "image/png", Data: "AAA"})
	if string(data) != `{"mime_type":"image/png","data":"AAA"}` {
		t.Errorf("InlineData JSON = %s", data)
	}
}
