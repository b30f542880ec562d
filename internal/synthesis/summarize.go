package synthesis

import (
	"context"
	"strings"
)

// SummarizeNote produces a refined, formatted prose rendition of a single
// transcript. durationSeconds scales the requested length: a short memo gets
// a few sentences, a long one gets a sectioned write-up. This is the one
// operation that returns free-form text rather than JSON.
func (e *Engine) SummarizeNote(ctx context.Context, transcript string, durationSeconds int) (string, error) {
	if !e.Configured() {
		return truncate(transcript, 200), nil
	}

	e.scan(ctx, transcript, "transcript")
	transcript = ValidateLength(transcript, "transcript")

	var lengthGuidance string
	switch {
	case durationSeconds < 60:
		lengthGuidance = "3-5 sentences capturing the complete thought."
	case durationSeconds < 300:
		lengthGuidance = "2-3 substantial paragraphs preserving the full reasoning and context."
	default:
		lengthGuidance = "4-6 paragraphs with natural sections. Capture everything important --- " +
			"this is a longer note and deserves a comprehensive summary."
	}

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"You write refined, well-structured notes from voice transcripts. " +
			"This is the user's OWN note.",
		formatSignalsBlock,
		voiceAndToneBlock,
	}, "\n\n")

	user := Wrap(transcript, DefaultWrapLabel) +
		"\n\n## Length\n" + lengthGuidance + "\n\n" +
		"Return only the formatted note text (with markdown headers/bullets as appropriate)."

	response, err := e.completeText(ctx, "summarize_note", system, user, 1000)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// appendSummarySchema is the reduced output contract for new-content
// summaries: no title, folder, narrative, or entities.
const appendSummarySchema = `{
  "summary": "Well-structured summary of the new content - comprehensive but focused",
  "tags": ["new", "relevant", "tags"],
  "calendar": [
    {
      "title": "Event name",
      "date": "YYYY-MM-DD",
      "time": "HH:MM (optional)",
      "location": "optional",
      "attendees": []
    }
  ],
  "email": [
    {
      "to": "recipient",
      "subject": "Subject",
      "body": "Draft body"
    }
  ],
  "reminders": [
    {
      "title": "Task description WITH CONTEXT",
      "due_date": "YYYY-MM-DD",
      "due_time": "HH:MM (optional)",
      "priority": "low|medium|high",
      "intent_source": "COMMITMENT_TO_SELF|COMMITMENT_TO_OTHER|TIME_BINDING|DELEGATION"
    }
  ]
}`

// SummarizeNewContent summarizes content being added to an existing note,
// in isolation from the note body, and extracts any new actions it carries.
// Length guidance scales with the word count of the new content.
func (e *Engine) SummarizeNewContent(ctx context.Context, newTranscript, existingTitle string, uc *UserContext) (*AppendSummary, error) {
	if !e.Configured() {
		return &AppendSummary{
			Summary:   truncate(newTranscript, 300),
			Tags:      []string{},
			Calendar:  []CalendarEvent{},
			Email:     []EmailDraft{},
			Reminders: []Reminder{},
		}, nil
	}

	e.scan(ctx, newTranscript, "transcript")
	newTranscript = ValidateLength(newTranscript, "transcript")
	folders := ResolveFolders(uc)

	var lengthGuidance string
	wordCount := len(strings.Fields(newTranscript))
	switch {
	case wordCount < 30:
		lengthGuidance = "2-4 sentences"
	case wordCount < 150:
		lengthGuidance = "1-2 paragraphs with bullets if needed"
	default:
		lengthGuidance = "Multiple paragraphs, use headers if topics shift"
	}

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"You are summarizing NEW CONTENT being added to an existing note.",
		voiceAndToneBlock,
		intentClassificationBlock,
	}, "\n\n")

	user := `This is an addition/update to the note titled: "` + existingTitle + `"` +
		"\n\n" + Wrap(newTranscript, "new_transcript") +
		"\n" + BuildContextBlock(uc, folders) +
		"\n\nLength guidance: " + lengthGuidance +
		"\n\nReturn ONLY valid JSON:\n" + appendSummarySchema

	response, err := e.complete(ctx, "summarize_new_content", system, user, 2000)
	if err != nil {
		return nil, err
	}

	result := ParseResult(response)
	if result == nil {
		e.parseFallback(ctx, "summarize_new_content")
		return &AppendSummary{
			Summary:   truncate(newTranscript, 300),
			Tags:      []string{},
			Calendar:  []CalendarEvent{},
			Email:     []EmailDraft{},
			Reminders: []Reminder{},
		}, nil
	}

	summary := result.Summary
	if summary == "" {
		summary = newTranscript
	}
	tags := result.Tags
	if len(tags) > 5 {
		tags = tags[:5]
	}
	// Priority coercion applies even without the full sanitizer.
	for i := range result.Reminders {
		switch result.Reminders[i].Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			result.Reminders[i].Priority = PriorityMedium
		}
	}
	return &AppendSummary{
		Summary:   summary,
		Tags:      tags,
		Calendar:  result.Calendar,
		Email:     result.Email,
		Reminders: result.Reminders,
	}, nil
}
