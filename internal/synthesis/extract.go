package synthesis

import (
	"context"
	"strings"
)

// extractMaxTokens bounds extraction-class calls, which return no narrative.
const extractMaxTokens = 2000

// Extract analyzes a transcript and pulls out actionable items without
// producing a narrative. The result carries title, folder, tags, summary,
// entities, open loops, and the three action lists.
func (e *Engine) Extract(ctx context.Context, transcript string, uc *UserContext) (*SynthesisResult, error) {
	if !e.Configured() {
		return e.offlineExtraction(transcript), nil
	}

	e.scan(ctx, transcript, "transcript")
	transcript = ValidateLength(transcript, "transcript")
	folders := ResolveFolders(uc)

	schema := BuildSchema(folders, SchemaOptions{
		IncludeFormatSignals: true,
		IncludeEntities:      true,
	})

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"You analyze voice memo transcripts and extract actionable items. " +
			"This is the user's OWN note --- write summaries as a refined version of their own thoughts.",
		fieldDefinitionsSummaryOnly,
		formatSignalsBlock,
		formatFewshotExamples,
		voiceAndToneBlock,
		intentClassificationBlock,
		"Return ONLY valid JSON with this exact structure:\n" + schema,
		outputRules,
	}, "\n\n")

	user := Wrap(transcript, DefaultWrapLabel) + "\n" + BuildContextBlock(uc, folders)

	response, err := e.complete(ctx, "extract", system, user, extractMaxTokens)
	if err != nil {
		return nil, err
	}

	result := ParseResult(response)
	if result == nil {
		e.parseFallback(ctx, "extract")
		return &SynthesisResult{
			Title:     "Voice Note",
			Folder:    "Personal",
			Tags:      []string{},
			Summary:   truncate(transcript, 200),
			Calendar:  []CalendarEvent{},
			Email:     []EmailDraft{},
			Reminders: []Reminder{},
			NextSteps: []string{},
		}, nil
	}
	if result.Title == "" {
		result.Title = "Voice Note"
	}
	return SanitizeResult(result, folders), nil
}

// ExtractForAppend analyzes additional audio recorded onto an existing note
// and extracts only actions that are genuinely new relative to what the note
// already covers.
func (e *Engine) ExtractForAppend(ctx context.Context, newTranscript, existingTranscript, existingTitle string, uc *UserContext) (*SynthesisResult, error) {
	if !e.Configured() {
		return e.offlineExtraction(newTranscript), nil
	}

	e.scan(ctx, newTranscript, "transcript")
	e.scan(ctx, existingTranscript, "existing_transcript")
	newTranscript = ValidateLength(newTranscript, "new_transcript")
	existingTranscript = ValidateLength(existingTranscript, "existing_transcript")
	folders := ResolveFolders(uc)

	schema := BuildSchema(folders, SchemaOptions{
		IncludeFormatSignals: true,
		IncludeEntities:      true,
	})

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"You are analyzing ADDITIONAL audio appended to an existing note. " +
			"Extract ONLY NEW actionable items not already covered.",
		intentClassificationBlock,
		"IMPORTANT: Only extract actions from the NEW transcript that are genuinely new. " +
			"Do NOT duplicate existing actions. If the new audio is just a continuation " +
			"of the same thought with no new actions, return empty arrays.",
		"Return ONLY valid JSON with this exact structure:\n" + schema,
		outputRules,
	}, "\n\n")

	user := "EXISTING NOTE TITLE: " + existingTitle + "\n\n" +
		Wrap(existingTranscript, "existing_transcript") +
		"\n\n---\n\n" +
		Wrap(newTranscript, "new_transcript") +
		"\n" + BuildContextBlock(uc, folders)

	response, err := e.complete(ctx, "extract_for_append", system, user, extractMaxTokens)
	if err != nil {
		return nil, err
	}

	result := ParseResult(response)
	if result == nil {
		e.parseFallback(ctx, "extract_for_append")
		return &SynthesisResult{
			Title:     existingTitle,
			Folder:    "Personal",
			Tags:      []string{},
			Summary:   "Added: " + truncate(newTranscript, 100),
			Calendar:  []CalendarEvent{},
			Email:     []EmailDraft{},
			Reminders: []Reminder{},
			NextSteps: []string{},
		}, nil
	}
	if result.Title == "" {
		result.Title = existingTitle
	}
	return SanitizeResult(result, folders), nil
}
