package synthesis

import (
	"fmt"
	"log/slog"
	"regexp"
)

// MaxTranscriptLength is the maximum length in characters accepted for any
// single user-supplied text field. Longer input is truncated, not rejected:
// losing the tail of a transcript is better than losing the note.
const MaxTranscriptLength = 50_000

// injectionPatterns are textual signals that user content may be trying to
// manipulate the model's instructions rather than describe content. A match
// is logged and counted but never blocks processing — defense is structural
// (boundary wrapping), not content filtering, and refusing legitimate speech
// that happens to contain "you are now" would be worse than a missed match.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?above`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?prior`),
	regexp.MustCompile(`(?i)new\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)forget\s+(everything|all)`),
	regexp.MustCompile(`(?i)override\s+(your|the)\s+(instructions|rules|system)`),
	regexp.MustCompile(`(?i)act\s+as\s+(a|an)\s+`),
	regexp.MustCompile(`(?i)pretend\s+you\s+are`),
	regexp.MustCompile(`(?i)roleplay\s+as`),
}

// ValidateLength truncates text to [MaxTranscriptLength] with a warning when
// exceeded. fieldName labels the warning so operators can tell which input
// overflowed.
func ValidateLength(text, fieldName string) string {
	if len(text) > MaxTranscriptLength {
		slog.Warn("input exceeds max length, truncating",
			"field", fieldName,
			"length", len(text),
			"max", MaxTranscriptLength,
		)
		return text[:MaxTranscriptLength]
	}
	return text
}

// ScanInjection checks text against the fixed injection pattern list and
// logs a warning with the first matched pattern and the source label. The
// text is never altered. Returns the matched pattern and whether one matched,
// so callers can count detections.
func ScanInjection(text, source string) (pattern string, found bool) {
	for _, re := range injectionPatterns {
		if re.MatchString(text) {
			slog.Warn("potential prompt injection detected",
				"source", source,
				"pattern", re.String(),
			)
			return re.String(), true
		}
	}
	return "", false
}

// DefaultWrapLabel is the boundary label used when callers have no more
// specific one.
const DefaultWrapLabel = "user_transcript"

// Wrap encloses user-provided content in XML-style boundary tags so the
// system instructions can declare everything inside inert data, never a
// command.
func Wrap(content, label string) string {
	if label == "" {
		label = DefaultWrapLabel
	}
	return fmt.Sprintf("<%s>\n%s\n</%s>", label, content, label)
}
