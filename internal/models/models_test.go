package models

import "testing"

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleUser, true},
		{RoleModel, true},
		{Role("assistant"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestNewMessages(t *testing.T) {
	u := NewUserMessage("hi")
	if u.Role != RoleUser || u.Text != "hi" || !u.IsUser() {
		t.Errorf("unexpected user message: %+v", u)
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	m := NewModelMessage("hello")
	if m.Role != RoleModel || m.IsUser() {
		t.Errorf("unexpected model message: %+v", m)
	}
}

func TestReplyText(t *testing.T) {
	tests := []struct {
		name  string
		reply *Reply
		want  string
	}{
		{"nil reply", nil, ""},
		{"no candidates", &Reply{}, ""},
		{"first candidate", &Reply{Candidates: []Candidate{{Text: "a"}, {Text: "b"}}}, "a"},
		{"chosen candidate", &Reply{Candidates: []Candidate{{Text: "a"}, {Text: "b"}}, Chosen: 1}, "b"},
		{"chosen out of range", &Reply{Candidates: []Candidate{{Text: "a"}}, Chosen: 5}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reply.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateEndpoint(t *testing.T) {
	got := GenerateEndpoint(Model25Pro)
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro:generateContent"
	if got != want {
		t.Errorf("GenerateEndpoint() = %q, want %q", got, want)
	}
}

func TestDefaultGenerationSettings(t *testing.T) {
	s := DefaultGenerationSettings()

	if s.Temperature != 1 || s.TopP != 0.95 || s.TopK != 64 || s.MaxOutputTokens != 8192 {
		t.Errorf("unexpected sampling parameters: %+v", s)
	}
	if s.ResponseMIMEType != "text/plain" {
		t.Errorf("ResponseMIMEType = %q", s.ResponseMIMEType)
	}
	if len(s.SafetySettings) != 4 {
		t.Fatalf("expected 4 safety settings, got %d", len(s.SafetySettings))
	}
	for _, ss := range s.SafetySettings {
		if ss.Threshold != BlockMediumAndAbove {
			t.Errorf("%s threshold = %s", ss.Category, ss.Threshold)
		}
	}
}

func TestIsKnownModel(t *testing.T) {
	if !IsKnownModel(DefaultModel) {
		t.Errorf("default model %q should be known", DefaultModel)
	}
	if IsKnownModel("gpt-4") {
		t.Error("gpt-4 should not be known")
	}
}
