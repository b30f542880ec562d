package synthesis

import (
	"context"
	"strings"
	"testing"
)

func TestOfflineEngineNeverErrors(t *testing.T) {
	t.Parallel()

	e := New(nil)
	if e.Configured() {
		t.Fatal("nil provider should not report configured")
	}
	ctx := context.Background()

	if _, err := e.Synthesize(ctx, "typed", "spoken", nil); err != nil {
		t.Errorf("Synthesize: %v", err)
	}
	if _, err := e.Extract(ctx, "transcript", nil); err != nil {
		t.Errorf("Extract: %v", err)
	}
	if _, err := e.SummarizeNote(ctx, "transcript", 30); err != nil {
		t.Errorf("SummarizeNote: %v", err)
	}
	if _, err := e.DecideAndUpdate(ctx, words(10), words(200), "T", "", historyOf(3), nil); err != nil {
		t.Errorf("DecideAndUpdate: %v", err)
	}
}

func TestOfflineSynthesis(t *testing.T) {
	t.Parallel()

	e := New(nil)

	got, err := e.Synthesize(context.Background(), "first thought here", "second thought spoken", nil)
	if err != nil {
		t.Fatal(err)
	}
	// Offline narrative joins inputs plainly, without prompt labels.
	if got.Narrative != "first thought here\n\nsecond thought spoken" {
		t.Errorf("narrative = %q", got.Narrative)
	}
	if strings.Contains(got.Narrative, "TYPED TEXT") {
		t.Error("offline narrative leaked prompt labels")
	}
	if got.Title != "first thought here second thought spoken" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestFirstWordsTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "short content verbatim",
			content: "buy milk and eggs",
			want:    "buy milk and eggs",
		},
		{
			name:    "long content truncated to ten words",
			content: "one two three four five six seven eight nine ten eleven twelve",
			want:    "one two three four five six seven eight nine ten...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := firstWordsTitle(tt.content, "Voice Note"); got != tt.want {
				t.Errorf("title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstWordsTitleBlankContent(t *testing.T) {
	t.Parallel()

	got := firstWordsTitle("   ", "Voice Note")
	if !strings.HasPrefix(got, "Voice Note - ") {
		t.Errorf("blank content title = %q", got)
	}
}

func TestOfflineSmartUpdate(t *testing.T) {
	t.Parallel()

	e := New(nil)
	ctx := context.Background()
	history := []RawInput{
		{Kind: InputText, Content: words(100)},
		{Kind: InputAudio, Content: words(100)},
	}
	existing := words(200)

	t.Run("short new content appends", func(t *testing.T) {
		t.Parallel()

		got, err := e.DecideAndUpdate(ctx, words(20), existing, "Title", "", history, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.Decision.UpdateType != UpdateAppend {
			t.Errorf("decision = %+v", got.Decision)
		}
		if !strings.HasPrefix(got.Result.Narrative, existing) {
			t.Error("append did not keep existing narrative first")
		}
	})

	t.Run("heuristics still force resynthesize offline", func(t *testing.T) {
		t.Parallel()

		got, err := e.DecideAndUpdate(ctx, words(150), existing, "Title", "", history, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.Decision.UpdateType != UpdateResynthesize {
			t.Errorf("decision = %+v", got.Decision)
		}
		if got.Decision.Confidence != 0.95 {
			t.Errorf("confidence = %v", got.Decision.Confidence)
		}
	})
}
