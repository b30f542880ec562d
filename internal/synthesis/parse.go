package synthesis

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// modelPayload is the superset of every JSON shape the model is asked to
// produce. Smart updates nest the synthesis fields under "result"; older
// model behavior sometimes flattened them to the top level, so both are
// decoded and [payload.result] picks whichever is populated.
type modelPayload struct {
	Decision *UpdateDecision `json:"decision"`
	Result   *flatResult     `json:"result"`
	flatResult
}

// flatResult mirrors SynthesisResult plus the raw format fields that arrive
// split at the top level of the model output.
type flatResult struct {
	Narrative       string           `json:"narrative"`
	Title           string           `json:"title"`
	Folder          string           `json:"folder"`
	Tags            []string         `json:"tags"`
	Summary         string           `json:"summary"`
	RelatedEntities *RelatedEntities `json:"related_entities"`
	OpenLoops       []OpenLoop       `json:"open_loops"`
	Calendar        []CalendarEvent  `json:"calendar"`
	Email           []EmailDraft     `json:"email"`
	Reminders       []Reminder       `json:"reminders"`
	FormatSignals   *FormatSignals   `json:"format_signals"`
	FormatRecipe    string           `json:"format_recipe"`
}

func (p *modelPayload) result() *flatResult {
	if p.Result != nil {
		return p.Result
	}
	return &p.flatResult
}

// toSynthesisResult folds the flat format fields into a FormatComposition.
// The composition is only attached when both halves are present, matching
// the shape the model is instructed to produce together.
func (f *flatResult) toSynthesisResult() *SynthesisResult {
	r := &SynthesisResult{
		Narrative:       f.Narrative,
		Title:           f.Title,
		Folder:          f.Folder,
		Tags:            f.Tags,
		Summary:         f.Summary,
		RelatedEntities: f.RelatedEntities,
		OpenLoops:       f.OpenLoops,
		Calendar:        f.Calendar,
		Email:           f.Email,
		Reminders:       f.Reminders,
	}
	if f.FormatSignals != nil && f.FormatRecipe != "" {
		r.FormatComposition = &FormatComposition{
			Signals: f.FormatSignals,
			Recipe:  f.FormatRecipe,
		}
	}
	return r
}

// stripCodeFence removes an optional ```json markdown fence around a model
// response. Content without a fence passes through unchanged.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Take the contents of the first fenced block.
	text = strings.TrimPrefix(text, "```")
	if body, _, found := strings.Cut(text, "```"); found {
		text = body
	}
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}

// parsePayload decodes a model response into the typed payload. It returns
// nil when the response is not valid JSON; callers supply their own
// fallback result in that case.
func parsePayload(response string) *modelPayload {
	var p modelPayload
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &p); err != nil {
		slog.Warn("failed to parse model JSON response", "error", err)
		return nil
	}
	return &p
}

// ParseResult decodes a model response into a SynthesisResult, or nil when
// the response is not valid JSON.
func ParseResult(response string) *SynthesisResult {
	p := parsePayload(response)
	if p == nil {
		return nil
	}
	return p.result().toSynthesisResult()
}

// SanitizeResult enforces the output contract on a decoded result in place
// and returns it. Out-of-range values are coerced rather than rejected: the
// folder must be one of allowedFolders, tags are capped at five, reminder
// priorities collapse to medium, and email drafts without a recipient get a
// placeholder. Sanitizing an already-sanitized result is a no-op.
func SanitizeResult(r *SynthesisResult, allowedFolders []string) *SynthesisResult {
	if r == nil {
		return nil
	}
	if !containsFolder(allowedFolders, r.Folder) {
		if len(allowedFolders) > 0 {
			r.Folder = allowedFolders[0]
		} else {
			r.Folder = "Personal"
		}
	}
	if len(r.Tags) > 5 {
		r.Tags = r.Tags[:5]
	}
	for i := range r.Reminders {
		switch r.Reminders[i].Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			r.Reminders[i].Priority = PriorityMedium
		}
	}
	for i := range r.Email {
		if r.Email[i].To == "" {
			r.Email[i].To = "recipient"
		}
	}
	return r
}

func containsFolder(folders []string, folder string) bool {
	for _, f := range folders {
		if f == folder {
			return true
		}
	}
	return false
}
