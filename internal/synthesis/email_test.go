package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/murmurhq/murmur/pkg/provider/llm"
	llmmock "github.com/murmurhq/murmur/pkg/provider/llm/mock"
)

func TestGenerateEmailDraft(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{
			"subject": "Q3 deck review",
			"body": "Hi Sarah,\n\nCould you review the Q3 deck by Friday?\n\nBest,\n[Your name]"
		}`},
	}
	e := New(p)

	got, err := e.GenerateEmailDraft(context.Background(), "need Sarah to review the Q3 deck", "Sarah", "Q3 deck review")
	if err != nil {
		t.Fatal(err)
	}
	if got.Subject != "Q3 deck review" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.Body, "Hi Sarah") {
		t.Errorf("body = %q", got.Body)
	}

	user := p.CompleteCalls[0].Req.Messages[0].Content
	if !strings.Contains(user, "Recipient: Sarah") || !strings.Contains(user, "Purpose: Q3 deck review") {
		t.Error("recipient or purpose missing from prompt")
	}
}

func TestGenerateEmailDraftParseFallback(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "I'd be happy to help with that email!"},
	}
	e := New(p)

	got, err := e.GenerateEmailDraft(context.Background(), "context here", "Bob", "status update")
	if err != nil {
		t.Fatal(err)
	}
	if got.Subject != "Re: status update" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.Body, "context here") {
		t.Errorf("body = %q, want context preserved", got.Body)
	}
}

func TestGenerateEmailDraftOffline(t *testing.T) {
	t.Parallel()

	e := New(nil)

	got, err := e.GenerateEmailDraft(context.Background(), "some context", "Bob", "intro")
	if err != nil {
		t.Fatal(err)
	}
	if got.Subject != "Re: intro" {
		t.Errorf("subject = %q", got.Subject)
	}
}
