package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/murmurhq/murmur/pkg/provider/llm"
	llmmock "github.com/murmurhq/murmur/pkg/provider/llm/mock"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"title": "Dentist and Groceries",
			"folder": "Personal",
			"tags": ["errands", "health"],
			"summary": "Reschedule the dentist and pick up groceries.",
			"calendar": [],
			"email": [],
			"reminders": [
				{"title": "Call dentist to reschedule", "due_date": "2026-09-02", "priority": "high", "intent_source": "COMMITMENT_TO_SELF"},
				{"title": "Pick up groceries on the way home", "due_date": "2026-09-01", "priority": "whenever"}
			]
		}`},
	}
	e := New(p)

	got, err := e.Extract(context.Background(), "call the dentist and grab groceries", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Dentist and Groceries" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(got.Reminders))
	}
	if got.Reminders[1].Priority != PriorityMedium {
		t.Errorf("invalid priority not coerced: %q", got.Reminders[1].Priority)
	}

	req := p.CompleteCalls[0].Req
	if req.MaxTokens != 2000 {
		t.Errorf("max tokens = %d, want 2000", req.MaxTokens)
	}
	if strings.Contains(req.SystemPrompt, `"narrative"`) {
		t.Error("extraction schema should not include a narrative field")
	}
}

func TestExtractParseFallback(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "no json here"},
	}
	e := New(p)

	transcript := "remember to water the plants"
	got, err := e.Extract(context.Background(), transcript, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Voice Note" || got.Folder != "Personal" {
		t.Errorf("fallback = %+v", got)
	}
	if got.Summary != transcript {
		t.Errorf("summary = %q, want transcript", got.Summary)
	}
}

func TestExtractForAppend(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"title": "Kitchen Renovation",
			"folder": "Projects",
			"tags": ["renovation"],
			"summary": "Also need to order the backsplash tile.",
			"calendar": [], "email": [],
			"reminders": [{"title": "Order backsplash tile", "due_date": "2026-09-05", "priority": "medium"}]
		}`},
	}
	e := New(p)

	got, err := e.ExtractForAppend(context.Background(),
		"also order the backsplash tile",
		"planning the kitchen renovation, cabinets on order",
		"Kitchen Renovation", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Reminders) != 1 {
		t.Fatalf("reminders = %d", len(got.Reminders))
	}

	user := p.CompleteCalls[0].Req.Messages[0].Content
	if !strings.Contains(user, "EXISTING NOTE TITLE: Kitchen Renovation") {
		t.Error("existing title missing")
	}
	if !strings.Contains(user, "<existing_transcript>") || !strings.Contains(user, "<new_transcript>") {
		t.Error("transcripts not wrapped with distinct labels")
	}
}

func TestExtractForAppendParseFallback(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "```\nbroken"},
	}
	e := New(p)

	got, err := e.ExtractForAppend(context.Background(), "new bit", "existing body", "My Note", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "My Note" {
		t.Errorf("title = %q, want existing title", got.Title)
	}
	if !strings.HasPrefix(got.Summary, "Added: ") {
		t.Errorf("summary = %q", got.Summary)
	}
}
