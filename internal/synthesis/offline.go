package synthesis

import (
	"strings"
	"time"
)

// Offline fallbacks cover local development and tests without an API key.
// They are deterministic (except for timestamp titles on blank input) and
// build every result purely from the inputs.

// firstWordsTitle derives a title from the first ten words of content, or a
// timestamped placeholder when content holds no words.
func firstWordsTitle(content, placeholder string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return placeholder + " - " + time.Now().UTC().Format("Jan 02, 2006 03:04 PM")
	}
	title := strings.Join(words[:min(10, len(words))], " ")
	if len(words) > 10 {
		title += "..."
	}
	return title
}

func (e *Engine) offlineExtraction(transcript string) *SynthesisResult {
	return &SynthesisResult{
		Title:     firstWordsTitle(transcript, "Voice Note"),
		Folder:    "Personal",
		Tags:      []string{},
		Summary:   truncate(transcript, 200),
		Calendar:  []CalendarEvent{},
		Email:     []EmailDraft{},
		Reminders: []Reminder{},
		NextSteps: []string{},
	}
}

func (e *Engine) offlineSynthesis(textInput, audioTranscript string) *SynthesisResult {
	narrative := combineInputs(textInput, audioTranscript)
	// The offline narrative joins inputs plainly, without the TYPED/SPOKEN
	// labels used in prompts.
	if textInput != "" && audioTranscript != "" {
		narrative = textInput + "\n\n" + audioTranscript
	}
	return &SynthesisResult{
		Narrative: narrative,
		Title:     firstWordsTitle(narrative, "Note"),
		Folder:    "Personal",
		Tags:      []string{},
		Summary:   truncate(narrative, 200),
		Calendar:  []CalendarEvent{},
		Email:     []EmailDraft{},
		Reminders: []Reminder{},
		NextSteps: []string{},
	}
}

// offlineSmartUpdate mirrors the incremental-update decision without a
// model: short new content appends, substantial new content rebuilds the
// narrative from the concatenated history.
func (e *Engine) offlineSmartUpdate(newContent, existingNarrative, existingTitle string, history []RawInput) *SmartUpdate {
	empty := SynthesisResult{
		Title:     existingTitle,
		Folder:    "Personal",
		Tags:      []string{},
		Calendar:  []CalendarEvent{},
		Email:     []EmailDraft{},
		Reminders: []Reminder{},
		NextSteps: []string{},
	}

	if len(strings.Fields(newContent)) < 50 {
		result := empty
		result.Narrative = existingNarrative + "\n\n" + newContent
		return &SmartUpdate{
			Decision: UpdateDecision{
				UpdateType: UpdateAppend,
				Confidence: 0.7,
				Reason:     "New content is short, appending to existing",
			},
			Result: result,
		}
	}

	parts := make([]string, 0, len(history))
	for _, in := range history {
		parts = append(parts, in.Content)
	}
	result := empty
	result.Narrative = strings.Join(parts, "\n\n")
	return &SmartUpdate{
		Decision: UpdateDecision{
			UpdateType: UpdateResynthesize,
			Confidence: 0.7,
			Reason:     "Substantial new content, resynthesizing",
		},
		Result: result,
	}
}
