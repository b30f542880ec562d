package synthesis

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// forcedConfidence is attached to decisions made by the heuristic pre-checks
// rather than the model.
const forcedConfidence = 0.95

// resynthHeuristic is one ordered pre-check rule. The first rule whose
// predicate fires determines the outcome; later rules are not consulted.
type resynthHeuristic struct {
	reason string
	match  func(existingWords, newWords, historyLen int) bool
}

// resynthHeuristics run in order before any model call. Word counts use
// whitespace splitting; thresholds are in words, not characters.
var resynthHeuristics = []resynthHeuristic{
	{
		reason: "New content is substantial relative to existing note",
		match: func(existingWords, newWords, _ int) bool {
			return existingWords > 0 && float64(newWords) > float64(existingWords)*0.5
		},
	},
	{
		reason: "Multiple fragmented inputs benefit from full synthesis",
		match: func(_, _, historyLen int) bool {
			return historyLen >= 5
		},
	},
	{
		reason: "Short note benefits from full synthesis",
		match: func(existingWords, _, _ int) bool {
			return existingWords < 50
		},
	},
}

// ShouldForceResynthesize runs the heuristic pre-checks that bypass the model
// for clear-cut cases: substantial new content, a fragmented history, or a
// very short existing note. Returns the triggering reason when forced.
func ShouldForceResynthesize(existingNarrative, newContent string, history []RawInput) (bool, string) {
	existingWords := len(strings.Fields(existingNarrative))
	newWords := len(strings.Fields(newContent))
	for _, h := range resynthHeuristics {
		if h.match(existingWords, newWords, len(history)) {
			return true, h.reason
		}
	}
	return false, ""
}

// DecideAndUpdate is the incremental-update entry point: given new content
// arriving on an existing note, it decides between appending and full
// regeneration and returns the decision together with the complete
// replacement result. No path returns a decision without a result.
//
// Decision paths, in order: heuristic pre-checks (forced resynthesize),
// offline fallback, model decision. A model response that cannot be decoded
// degrades to a low-confidence append that concatenates the new content.
func (e *Engine) DecideAndUpdate(ctx context.Context, newContent, existingNarrative, existingTitle, existingSummary string, history []RawInput, uc *UserContext) (*SmartUpdate, error) {
	if forced, reason := ShouldForceResynthesize(existingNarrative, newContent, history); forced {
		result, err := e.Resynthesize(ctx, history, uc, true)
		if err != nil {
			return nil, err
		}
		e.recordDecision(ctx, UpdateResynthesize, "heuristic")
		return &SmartUpdate{
			Decision: UpdateDecision{
				UpdateType: UpdateResynthesize,
				Confidence: forcedConfidence,
				Reason:     reason,
			},
			Result: *result,
		}, nil
	}

	if !e.Configured() {
		u := e.offlineSmartUpdate(newContent, existingNarrative, existingTitle, history)
		e.recordDecision(ctx, u.Decision.UpdateType, "offline")
		return u, nil
	}

	u, err := e.modelDecideAndUpdate(ctx, newContent, existingNarrative, existingTitle, existingSummary, uc)
	if err != nil {
		return nil, err
	}
	e.recordDecision(ctx, u.Decision.UpdateType, "model")
	return u, nil
}

// modelDecideAndUpdate handles the model-backed decision path. The model
// returns both the decision and the complete replacement result in one call.
func (e *Engine) modelDecideAndUpdate(ctx context.Context, newContent, existingNarrative, existingTitle, existingSummary string, uc *UserContext) (*SmartUpdate, error) {
	e.scan(ctx, newContent, "transcript")
	e.scan(ctx, existingNarrative, "existing_narrative")
	newContent = ValidateLength(newContent, "new_content")
	existingNarrative = ValidateLength(existingNarrative, "existing_narrative")
	folders := ResolveFolders(uc)

	schema := BuildSchema(folders, SchemaOptions{
		IncludeNarrative:     true,
		IncludeFormatSignals: true,
		IncludeEntities:      true,
		IncludeDecision:      true,
	})

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"You are updating an existing note with new content. " +
			"First decide: APPEND (purely additive, same topic) or " +
			"RESYNTHESIZE (contradicts, corrects, or shifts topic).",
		fieldDefinitionsFull,
		intentClassificationBlock,
		"Return ONLY valid JSON with this exact structure:\n" + schema,
		"IMPORTANT:\n" +
			"- If appending, the narrative should seamlessly integrate the new content\n" +
			"- If resynthesizing, create a completely fresh narrative from all information\n" +
			"- Always return the COMPLETE narrative, not just changes\n" +
			"- Only extract Calendar, Email, and Reminder actions --- nothing else",
	}, "\n\n")

	summaryLine := existingSummary
	if summaryLine == "" {
		summaryLine = "None"
	}
	user := Wrap(existingNarrative, "existing_note") +
		"\n\n" +
		Wrap(newContent, "new_content") +
		"\n\nExisting title: " + existingTitle +
		"\nExisting summary: " + summaryLine +
		"\n" + BuildContextBlock(uc, folders)

	response, err := e.complete(ctx, "smart_update", system, user, 4000)
	if err != nil {
		return nil, err
	}

	payload := parsePayload(response)
	if payload == nil {
		e.parseFallback(ctx, "smart_update")
		return &SmartUpdate{
			Decision: UpdateDecision{
				UpdateType: UpdateAppend,
				Confidence: 0.5,
				Reason:     "JSON parse failed, defaulting to append",
			},
			Result: SynthesisResult{
				Narrative: existingNarrative + "\n\n" + newContent,
				Title:     existingTitle,
				Folder:    "Personal",
				Tags:      []string{},
				Summary:   existingSummary,
				Calendar:  []CalendarEvent{},
				Email:     []EmailDraft{},
				Reminders: []Reminder{},
				NextSteps: []string{},
			},
		}, nil
	}

	decision := normalizeDecision(payload.Decision)
	result := payload.result().toSynthesisResult()
	if result.Narrative == "" {
		result.Narrative = existingNarrative + "\n\n" + newContent
	}
	if result.Title == "" {
		result.Title = existingTitle
	}
	if result.Summary == "" {
		result.Summary = existingSummary
	}
	SanitizeResult(result, folders)

	return &SmartUpdate{Decision: decision, Result: *result}, nil
}

// normalizeDecision coerces a model-supplied decision into the closed
// update-type set. A missing decision or unknown type becomes a neutral
// append.
func normalizeDecision(d *UpdateDecision) UpdateDecision {
	if d == nil {
		return UpdateDecision{
			UpdateType: UpdateAppend,
			Confidence: 0.5,
			Reason:     "Default decision",
		}
	}
	out := *d
	switch out.UpdateType {
	case UpdateAppend, UpdateResynthesize:
	default:
		out.UpdateType = UpdateAppend
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return out
}

func (e *Engine) recordDecision(ctx context.Context, t UpdateType, path string) {
	if e.metrics == nil {
		return
	}
	e.metrics.UpdateDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("update_type", string(t)),
		attribute.String("path", path),
	))
}
