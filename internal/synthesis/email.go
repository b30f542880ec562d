package synthesis

import (
	"context"
	"encoding/json"
	"strings"
)

// emailSchema is the minimal output contract for email drafting.
const emailSchema = `{
  "subject": "Email subject line",
  "body": "Full email body with proper greeting and signature placeholder"
}`

// GenerateEmailDraft writes a polished email from voice-memo context, a
// recipient, and a stated purpose. Offline or on a malformed response the
// draft degrades to a placeholder that preserves the context head.
func (e *Engine) GenerateEmailDraft(ctx context.Context, memoContext, recipient, purpose string) (*EmailMessage, error) {
	if !e.Configured() {
		return &EmailMessage{
			Subject: "Re: " + purpose,
			Body:    "[AI draft unavailable]\n\nContext: " + truncate(memoContext, 200),
		}, nil
	}

	e.scan(ctx, memoContext, "email_context")
	memoContext = ValidateLength(memoContext, "email_context")

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"Generate a professional email draft based on voice memo context.",
	}, "\n\n")

	user := Wrap(memoContext, DefaultWrapLabel) +
		"\n\nRecipient: " + recipient +
		"\nPurpose: " + purpose +
		"\n\nReturn ONLY valid JSON:\n" + emailSchema

	response, err := e.complete(ctx, "email_draft", system, user, 1000)
	if err != nil {
		return nil, err
	}

	var msg EmailMessage
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &msg); err != nil {
		e.parseFallback(ctx, "email_draft")
		return &EmailMessage{
			Subject: "Re: " + purpose,
			Body:    "[Draft generation failed]\n\nContext: " + truncate(memoContext, 200),
		}, nil
	}
	if msg.Subject == "" {
		msg.Subject = "Re: " + purpose
	}
	return &msg, nil
}
