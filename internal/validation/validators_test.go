package validation

import (
	"strings"
	"testing"
)

type signup struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName *string `json:"first_name" validate:"omitempty,notblank"`
	Idea      string  `json:"idea" validate:"omitempty,idea_label"`
}

func TestValidate_CustomTags(t *testing.T) {
	t.Parallel()
	blank := "   "
	name := "Ada"
	tests := []struct {
		name    string
		in      signup
		wantErr bool
	}{
		{"valid", signup{Email: "a@b.co", FirstName: &name, Idea: "Zoo"}, false},
		{"nil optional name", signup{Email: "a@b.co"}, false},
		{"blank name", signup{Email: "a@b.co", FirstName: &blank}, true},
		{"bad email", signup{Email: "nope"}, true},
		{"long idea", signup{Email: "a@b.co", Idea: strings.Repeat("x", MaxIdeaLength+1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate.Struct(%+v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	t.Parallel()
	blank := " "
	err := Validate.Struct(signup{Email: "nope", FirstName: &blank})
	got := Messages(err, map[string]string{
		"email.email": "Please enter a valid email address",
	})
	if len(got) != 2 {
		t.Fatalf("Messages() = %v, want 2 messages", got)
	}
	if got[0] != "Please enter a valid email address" {
		t.Errorf("Messages()[0] = %q", got[0])
	}
	if got[1] != "first_name failed notblank validation" {
		t.Errorf("Messages()[1] = %q", got[1])
	}
	if Messages(nil, nil) != nil {
		t.Error("Messages(nil) should be nil")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	if got := SanitizeText("  Movie\x00 Night\t "); got != "Movie Night" {
		t.Errorf("SanitizeText() = %q, want %q", got, "Movie Night")
	}
}

func TestValidateIdea(t *testing.T) {
	t.Parallel()
	if err := ValidateIdea(" \x01 "); err == nil {
		t.Error("ValidateIdea(blank) = nil, want error")
	}
	if err := ValidateIdea("Corn Maze"); err != nil {
		t.Errorf("ValidateIdea() = %v", err)
	}
}
