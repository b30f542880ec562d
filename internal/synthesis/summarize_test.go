package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/murmurhq/murmur/pkg/provider/llm"
	llmmock "github.com/murmurhq/murmur/pkg/provider/llm/mock"
)

func TestSummarizeNoteLengthGuidance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration int
		want     string
	}{
		{"short memo", 30, "3-5 sentences"},
		{"medium memo", 120, "2-3 substantial paragraphs"},
		{"long memo", 600, "4-6 paragraphs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &llmmock.Provider{
				CompleteResponse: &llm.CompletionResponse{Content: "  A tidy summary.  "},
			}
			e := New(p)

			got, err := e.SummarizeNote(context.Background(), "some transcript", tt.duration)
			if err != nil {
				t.Fatal(err)
			}
			if got != "A tidy summary." {
				t.Errorf("summary = %q, want trimmed response", got)
			}

			req := p.CompleteCalls[0].Req
			if !strings.Contains(req.Messages[0].Content, tt.want) {
				t.Errorf("length guidance %q missing from prompt", tt.want)
			}
			if req.JSONResponse {
				t.Error("summarize should request free-form text, not JSON")
			}
		})
	}
}

func TestSummarizeNewContent(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"summary": "New tile measurements for the backsplash.",
			"tags": ["renovation", "tile"],
			"calendar": [],
			"email": [],
			"reminders": [{"title": "Confirm tile order", "due_date": "2026-09-03", "priority": "nope"}]
		}`},
	}
	e := New(p)

	got, err := e.SummarizeNewContent(context.Background(), "measured the backsplash, thirty square feet", "Kitchen Renovation", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != "New tile measurements for the backsplash." {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.Reminders[0].Priority != PriorityMedium {
		t.Errorf("priority not coerced: %q", got.Reminders[0].Priority)
	}

	user := p.CompleteCalls[0].Req.Messages[0].Content
	if !strings.Contains(user, `titled: "Kitchen Renovation"`) {
		t.Error("existing title missing from prompt")
	}
	if !strings.Contains(user, "Length guidance: 2-4 sentences") {
		t.Error("short-content length guidance missing")
	}
}

func TestSummarizeNewContentParseFallback(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "nope"},
	}
	e := New(p)

	got, err := e.SummarizeNewContent(context.Background(), "short addition", "Title", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != "short addition" {
		t.Errorf("summary = %q, want verbatim new content", got.Summary)
	}
	if len(got.Tags) != 0 || len(got.Reminders) != 0 {
		t.Errorf("fallback should carry no extractions: %+v", got)
	}
}
