package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/murmurhq/murmur/pkg/provider/llm"
	llmmock "github.com/murmurhq/murmur/pkg/provider/llm/mock"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func historyOf(n int) []RawInput {
	h := make([]RawInput, n)
	for i := range h {
		h[i] = RawInput{Kind: InputText, Content: "fragment"}
	}
	return h
}

func TestShouldForceResynthesize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		existing   string
		newContent string
		history    []RawInput
		wantForce  bool
		wantReason string
	}{
		{
			name:       "substantial new content",
			existing:   words(100),
			newContent: words(60),
			history:    historyOf(2),
			wantForce:  true,
			wantReason: "New content is substantial relative to existing note",
		},
		{
			name:       "fragmented history",
			existing:   words(200),
			newContent: words(10),
			history:    historyOf(5),
			wantForce:  true,
			wantReason: "Multiple fragmented inputs benefit from full synthesis",
		},
		{
			name:       "short existing note",
			existing:   words(2),
			newContent: words(1),
			history:    historyOf(2),
			wantForce:  true,
			wantReason: "Short note benefits from full synthesis",
		},
		{
			name:       "substantial rule wins over short rule",
			existing:   words(2),
			newContent: words(10),
			history:    historyOf(2),
			wantForce:  true,
			wantReason: "New content is substantial relative to existing note",
		},
		{
			name:       "no rule fires",
			existing:   words(200),
			newContent: words(30),
			history:    historyOf(3),
			wantForce:  false,
		},
		{
			name:       "exactly half is not substantial",
			existing:   words(100),
			newContent: words(50),
			history:    historyOf(2),
			wantForce:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			force, reason := ShouldForceResynthesize(tt.existing, tt.newContent, tt.history)
			if force != tt.wantForce {
				t.Fatalf("force = %v, want %v", force, tt.wantForce)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestDecideAndUpdateForcedPath(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{"title":"Rebuilt","folder":"Personal","narrative":"all of it"}`},
	}
	e := New(p)

	history := historyOf(6)
	got, err := e.DecideAndUpdate(context.Background(), words(10), words(200), "Old Title", "", history, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision.UpdateType != UpdateResynthesize {
		t.Errorf("update type = %q", got.Decision.UpdateType)
	}
	if got.Decision.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", got.Decision.Confidence)
	}
	if got.Decision.Reason != "Multiple fragmented inputs benefit from full synthesis" {
		t.Errorf("reason = %q", got.Decision.Reason)
	}
	if got.Result.Title != "Rebuilt" {
		t.Errorf("result title = %q", got.Result.Title)
	}

	// The single model call must be the resynthesis, not a decision call.
	if len(p.CompleteCalls) != 1 {
		t.Fatalf("model calls = %d, want 1", len(p.CompleteCalls))
	}
	if strings.Contains(p.CompleteCalls[0].Req.SystemPrompt, "APPEND") {
		t.Error("forced path still asked the model to decide")
	}
}

func TestDecideAndUpdateModelPath(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"decision": {"update_type": "append", "confidence": 0.85, "reason": "purely additive"},
			"result": {
				"narrative": "old and new together",
				"title": "Merged",
				"folder": "Work",
				"tags": [],
				"calendar": [], "email": [], "reminders": []
			}
		}`},
	}
	e := New(p)

	got, err := e.DecideAndUpdate(context.Background(), words(30), words(200), "Old Title", "old summary", historyOf(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision.UpdateType != UpdateAppend || got.Decision.Confidence != 0.85 {
		t.Errorf("decision = %+v", got.Decision)
	}
	if got.Result.Narrative != "old and new together" {
		t.Errorf("narrative = %q", got.Result.Narrative)
	}

	req := p.CompleteCalls[0].Req
	user := req.Messages[0].Content
	if !strings.Contains(user, "<existing_note>") || !strings.Contains(user, "<new_content>") {
		t.Error("existing and new content not wrapped with distinct labels")
	}
	if !strings.Contains(user, "Existing title: Old Title") {
		t.Error("existing title missing from prompt")
	}
	if req.MaxTokens != 4000 {
		t.Errorf("max tokens = %d, want 4000", req.MaxTokens)
	}
}

func TestDecideAndUpdateFlatDecisionShape(t *testing.T) {
	t.Parallel()

	// Decision at top level with result fields flattened beside it.
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"decision": {"update_type": "resynthesize", "confidence": 0.9, "reason": "topic shift"},
			"narrative": "fresh narrative",
			"title": "Flat",
			"folder": "Personal"
		}`},
	}
	e := New(p)

	got, err := e.DecideAndUpdate(context.Background(), words(30), words(200), "Old", "", historyOf(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision.UpdateType != UpdateResynthesize {
		t.Errorf("decision = %+v", got.Decision)
	}
	if got.Result.Title != "Flat" || got.Result.Narrative != "fresh narrative" {
		t.Errorf("result = %+v", got.Result)
	}
}

func TestDecideAndUpdateParseFallback(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "not json at all"},
	}
	e := New(p)

	existing := words(200)
	newContent := words(30)
	got, err := e.DecideAndUpdate(context.Background(), newContent, existing, "Old Title", "old summary", historyOf(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision.UpdateType != UpdateAppend || got.Decision.Confidence != 0.5 {
		t.Errorf("decision = %+v", got.Decision)
	}
	if got.Decision.Reason != "JSON parse failed, defaulting to append" {
		t.Errorf("reason = %q", got.Decision.Reason)
	}
	if got.Result.Narrative != existing+"\n\n"+newContent {
		t.Error("fallback narrative is not existing+new concatenation")
	}
	if got.Result.Title != "Old Title" || got.Result.Summary != "old summary" {
		t.Errorf("result = %+v", got.Result)
	}
}

func TestDecideAndUpdateUnknownTypeCoerced(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"decision": {"update_type": "merge", "confidence": 0.9, "reason": "?"},
			"result": {"narrative": "n", "title": "T", "folder": "Work"}
		}`},
	}
	e := New(p)

	got, err := e.DecideAndUpdate(context.Background(), words(30), words(200), "Old", "", historyOf(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision.UpdateType != UpdateAppend {
		t.Errorf("unknown update type not coerced: %q", got.Decision.UpdateType)
	}
}
