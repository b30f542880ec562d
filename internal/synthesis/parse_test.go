package synthesis

import (
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json",
			in:   `{"title":"x"}`,
			want: `{"title":"x"}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"title\":\"x\"}\n```",
			want: `{"title":"x"}`,
		},
		{
			name: "plain fence",
			in:   "```\n{\"title\":\"x\"}\n```",
			want: `{"title":"x"}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n```json\n{\"a\":1}\n```\n  ",
			want: `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseResult(t *testing.T) {
	t.Parallel()

	t.Run("flat shape", func(t *testing.T) {
		t.Parallel()

		r := ParseResult(`{
			"narrative": "Did the thing.",
			"title": "Errands",
			"folder": "Personal",
			"tags": ["errands"],
			"summary": "Ran errands.",
			"format_signals": {"has_discrete_items": true, "topic_count": 1, "tone": "casual"},
			"format_recipe": "checklist",
			"calendar": [], "email": [], "reminders": []
		}`)
		if r == nil {
			t.Fatal("got nil result")
		}
		if r.Title != "Errands" {
			t.Errorf("title = %q", r.Title)
		}
		if r.FormatComposition == nil || r.FormatComposition.Recipe != "checklist" {
			t.Errorf("format composition not folded: %+v", r.FormatComposition)
		}
	})

	t.Run("nested result shape", func(t *testing.T) {
		t.Parallel()

		r := ParseResult(`{
			"decision": {"update_type": "append", "confidence": 0.8, "reason": "additive"},
			"result": {"narrative": "combined", "title": "Nested", "folder": "Work"}
		}`)
		if r == nil {
			t.Fatal("got nil result")
		}
		if r.Title != "Nested" {
			t.Errorf("title = %q, want nested result's title", r.Title)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		if r := ParseResult("the model rambled instead of returning JSON"); r != nil {
			t.Errorf("want nil for invalid JSON, got %+v", r)
		}
	})

	t.Run("fenced json", func(t *testing.T) {
		t.Parallel()

		r := ParseResult("```json\n{\"title\":\"Fenced\"}\n```")
		if r == nil || r.Title != "Fenced" {
			t.Fatalf("fenced parse failed: %+v", r)
		}
	})
}

func TestSanitizeResult(t *testing.T) {
	t.Parallel()

	folders := []string{"Work", "Personal"}

	tests := []struct {
		name string
		in   *SynthesisResult
		want func(t *testing.T, r *SynthesisResult)
	}{
		{
			name: "unknown folder coerced to first allowed",
			in:   &SynthesisResult{Folder: "Hobbies"},
			want: func(t *testing.T, r *SynthesisResult) {
				if r.Folder != "Work" {
					t.Errorf("folder = %q, want Work", r.Folder)
				}
			},
		},
		{
			name: "allowed folder kept",
			in:   &SynthesisResult{Folder: "Personal"},
			want: func(t *testing.T, r *SynthesisResult) {
				if r.Folder != "Personal" {
					t.Errorf("folder = %q, want Personal", r.Folder)
				}
			},
		},
		{
			name: "tags capped at five",
			in:   &SynthesisResult{Folder: "Work", Tags: []string{"a", "b", "c", "d", "e", "f", "g"}},
			want: func(t *testing.T, r *SynthesisResult) {
				if len(r.Tags) != 5 {
					t.Errorf("tags = %d, want 5", len(r.Tags))
				}
			},
		},
		{
			name: "invalid reminder priority coerced to medium",
			in: &SynthesisResult{Folder: "Work", Reminders: []Reminder{
				{Title: "call", Priority: "urgent"},
				{Title: "email", Priority: "high"},
			}},
			want: func(t *testing.T, r *SynthesisResult) {
				if r.Reminders[0].Priority != PriorityMedium {
					t.Errorf("priority = %q, want medium", r.Reminders[0].Priority)
				}
				if r.Reminders[1].Priority != PriorityHigh {
					t.Errorf("valid priority changed: %q", r.Reminders[1].Priority)
				}
			},
		},
		{
			name: "email without recipient gets placeholder",
			in: &SynthesisResult{Folder: "Work", Email: []EmailDraft{
				{Subject: "Update", Body: "hi"},
			}},
			want: func(t *testing.T, r *SynthesisResult) {
				if r.Email[0].To != "recipient" {
					t.Errorf("to = %q, want recipient", r.Email[0].To)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.want(t, SanitizeResult(tt.in, folders))
		})
	}
}

func TestSanitizeResultEmptyFolderList(t *testing.T) {
	t.Parallel()

	r := SanitizeResult(&SynthesisResult{Folder: "Anything"}, nil)
	if r.Folder != "Personal" {
		t.Errorf("folder = %q, want Personal", r.Folder)
	}
}

func TestSanitizeResultIdempotent(t *testing.T) {
	t.Parallel()

	folders := []string{"Work", "Personal"}
	r := &SynthesisResult{
		Folder:    "Hobbies",
		Tags:      []string{"a", "b", "c", "d", "e", "f"},
		Reminders: []Reminder{{Title: "x", Priority: "asap"}},
		Email:     []EmailDraft{{Subject: "s"}},
	}
	first := *SanitizeResult(r, folders)
	second := *SanitizeResult(r, folders)

	if first.Folder != second.Folder || len(first.Tags) != len(second.Tags) ||
		first.Reminders[0].Priority != second.Reminders[0].Priority ||
		first.Email[0].To != second.Email[0].To {
		t.Errorf("second sanitize changed the result: %+v vs %+v", first, second)
	}
}
