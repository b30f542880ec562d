package synthesis

import (
	"context"
	"fmt"
	"strings"
)

// combineInputs merges typed text and spoken-audio transcript into a single
// labelled block. Either side may be empty; both empty yields "".
func combineInputs(textInput, audioTranscript string) string {
	switch {
	case textInput != "" && audioTranscript != "":
		return "TYPED TEXT:\n" + textInput + "\n\nSPOKEN AUDIO:\n" + audioTranscript
	case textInput != "":
		return textInput
	default:
		return audioTranscript
	}
}

// emptyResult is what every synthesis path returns for empty input. No model
// call is made for an empty note.
func emptyResult() *SynthesisResult {
	return &SynthesisResult{
		Title:     "Empty Note",
		Folder:    "Personal",
		Tags:      []string{},
		Calendar:  []CalendarEvent{},
		Email:     []EmailDraft{},
		Reminders: []Reminder{},
		NextSteps: []string{},
	}
}

// synthesisParseFallback preserves the user's words verbatim when the model
// response cannot be decoded: the combined input becomes the narrative.
func synthesisParseFallback(combined string) *SynthesisResult {
	return &SynthesisResult{
		Narrative: combined,
		Title:     "Voice Note",
		Folder:    "Personal",
		Tags:      []string{},
		Summary:   truncate(combined, 200),
		Calendar:  []CalendarEvent{},
		Email:     []EmailDraft{},
		Reminders: []Reminder{},
		NextSteps: []string{},
	}
}

// truncate shortens s to max characters with a trailing ellipsis.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// Synthesize merges typed text and/or an audio transcript into one cohesive
// note. Empty input returns a placeholder result without a model call; an
// unparseable model response falls back to the combined input verbatim.
func (e *Engine) Synthesize(ctx context.Context, textInput, audioTranscript string, uc *UserContext) (*SynthesisResult, error) {
	combined := combineInputs(textInput, audioTranscript)
	if combined == "" {
		return emptyResult(), nil
	}
	if !e.Configured() {
		return e.offlineSynthesis(textInput, audioTranscript), nil
	}
	defer e.recordSynthesis(ctx)()

	e.scan(ctx, combined, "transcript")
	combined = ValidateLength(combined, "transcript")
	folders := ResolveFolders(uc)

	schema := BuildSchema(folders, SchemaOptions{
		IncludeNarrative:     true,
		IncludeFormatSignals: true,
		IncludeEntities:      true,
	})

	system := strings.Join([]string{
		injectionDefenseInstruction,
		"You synthesize a user's thoughts into a cohesive note. " +
			"The user may have provided typed text and/or spoken audio. " +
			"Merge into ONE coherent narrative that flows naturally.",
		fieldDefinitionsFull,
		formatSignalsBlock,
		formatFewshotExamples,
		voiceAndToneBlock,
		mathNotationBlock,
		technicalPreservationBlock,
		intentClassificationBlock,
		"Return ONLY valid JSON with this exact structure:\n" + schema,
		"Rules:\n" +
			"1. Create a single, cohesive narrative that integrates all inputs naturally.\n" +
			"2. Do NOT separate typed vs spoken --- merge them into one flowing text.\n" +
			"3. Fix grammar, remove filler words, but PRESERVE the user's voice and intent.",
		outputRules,
	}, "\n\n")

	user := Wrap(combined, DefaultWrapLabel) + "\n" + BuildContextBlock(uc, folders)

	// Token budget scales with input size so technical content has room to
	// expand when formatted.
	words := len(strings.Fields(combined))
	maxTokens := min(8000, max(3000, words*3))

	response, err := e.complete(ctx, "synthesize", system, user, maxTokens)
	if err != nil {
		return nil, err
	}

	result := ParseResult(response)
	if result == nil {
		e.parseFallback(ctx, "synthesize")
		return synthesisParseFallback(combined), nil
	}
	if result.Narrative == "" {
		result.Narrative = combined
	}
	if result.Title == "" {
		result.Title = "Voice Note"
	}
	return SanitizeResult(result, folders), nil
}

// ComprehensiveSynthesize regenerates a note from its full combined content
// with explicit lossless-preservation instructions. Used when the input
// history has accumulated enough that an incremental merge risks dropping
// detail. inputCount labels how many separate contributions the combined
// content came from.
func (e *Engine) ComprehensiveSynthesize(ctx context.Context, textInput, audioTranscript string, inputCount int, uc *UserContext) (*SynthesisResult, error) {
	combined := combineInputs(textInput, audioTranscript)
	if combined == "" {
		return emptyResult(), nil
	}
	if !e.Configured() {
		return e.offlineSynthesis(textInput, audioTranscript), nil
	}
	defer e.recordSynthesis(ctx)()

	e.scan(ctx, combined, "transcript")
	combined = ValidateLength(combined, "transcript")
	folders := ResolveFolders(uc)
	totalWords := len(strings.Fields(combined))

	schema := BuildSchema(folders, SchemaOptions{
		IncludeNarrative:     true,
		IncludeFormatSignals: true,
		IncludeEntities:      true,
	})

	system := strings.Join([]string{
		injectionDefenseInstruction,
		fmt.Sprintf("You are re-synthesizing a note from %d separate inputs (%d words total). "+
			"PRESERVE ALL INFORMATION --- every detail, name, number, date, formula, and idea. "+
			"Organize by theme, maintain chronology, capture nuance.", inputCount, totalWords),
		fieldDefinitionsFull,
		formatSignalsBlock,
		voiceAndToneBlock,
		mathNotationBlock,
		technicalPreservationBlock,
		intentClassificationBlock,
		"Return ONLY valid JSON with this exact structure:\n" + schema,
		"CRITICAL PRESERVATION RULES:\n" +
			"1. The narrative must be comprehensive --- LONGER or equal to the combined inputs.\n" +
			"2. If 5 items were discussed, all 5 must appear. If reasoning was given, include the reasoning.\n" +
			"3. DO NOT summarize away details. DO NOT paraphrase formulas into prose.\n" +
			"4. Every equation, derivation step, definition, and aside must be preserved.\n" +
			"5. When in doubt, include MORE content, not less.",
	}, "\n\n")

	user := Wrap(combined, DefaultWrapLabel) +
		fmt.Sprintf("\n\nInput count: %d\nTotal words: %d", inputCount, totalWords) +
		"\n" + BuildContextBlock(uc, folders)

	// Comprehensive mode budgets more generously: formatted technical
	// content expands past its raw word count.
	maxTokens := min(8000, max(4000, totalWords*4))

	response, err := e.complete(ctx, "comprehensive_synthesize", system, user, maxTokens)
	if err != nil {
		return nil, err
	}

	result := ParseResult(response)
	if result == nil {
		e.parseFallback(ctx, "comprehensive_synthesize")
		fb := synthesisParseFallback(combined)
		fb.Summary = combined
		return fb, nil
	}
	if result.Narrative == "" {
		result.Narrative = combined
	}
	if result.Title == "" {
		result.Title = "Voice Note"
	}
	if result.Summary == "" {
		result.Summary = result.Narrative
	}
	return SanitizeResult(result, folders), nil
}

// Resynthesize rebuilds a note from its complete ordered input history.
// Inputs are partitioned by kind, concatenated in order, and fed through
// [Engine.ComprehensiveSynthesize] (or [Engine.Synthesize] when
// comprehensive is false).
func (e *Engine) Resynthesize(ctx context.Context, history []RawInput, uc *UserContext, comprehensive bool) (*SynthesisResult, error) {
	var textParts, audioParts []string
	for _, in := range history {
		switch in.Kind {
		case InputText:
			textParts = append(textParts, in.Content)
		case InputAudio:
			audioParts = append(audioParts, in.Content)
		}
	}
	textInput := strings.Join(textParts, "\n\n")
	audioTranscript := strings.Join(audioParts, "\n\n")

	if comprehensive {
		return e.ComprehensiveSynthesize(ctx, textInput, audioTranscript, len(history), uc)
	}
	return e.Synthesize(ctx, textInput, audioTranscript, uc)
}
