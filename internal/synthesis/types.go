package synthesis

import "time"

// InputKind distinguishes typed text from transcribed speech in a note's
// input history.
type InputKind string

const (
	// InputText is content the user typed.
	InputText InputKind = "text"

	// InputAudio is the transcript of content the user spoke.
	InputAudio InputKind = "audio"
)

// RawInput is one atomic contribution to a note over time. A note's full
// semantic history is the ordered sequence of its RawInputs; the current
// narrative is always reconstructible from that sequence through
// [Engine.Resynthesize], never mutated independently.
type RawInput struct {
	// Kind is the input modality.
	Kind InputKind `json:"kind"`

	// Content is the typed text, or the transcript of the spoken audio.
	Content string `json:"content"`

	// OccurredAt is when the input was captured.
	OccurredAt time.Time `json:"occurred_at"`

	// AudioDurationSeconds is the recording length. Audio inputs only.
	AudioDurationSeconds int `json:"audio_duration_seconds,omitempty"`

	// AudioRef is an opaque storage key for the original recording. Audio
	// inputs only.
	AudioRef string `json:"audio_reference,omitempty"`
}

// CalendarEvent is an extracted calendar action item.
type CalendarEvent struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Time      string   `json:"time,omitempty"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// EmailDraft is an extracted email action item. After sanitization To is
// never empty; the model occasionally omits it and the sanitizer substitutes
// a placeholder rather than dropping the draft.
type EmailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Reminder priorities accepted after sanitization.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Reminder is an extracted reminder action item. Titles must carry enough
// context to stand alone outside the note ("Email Sarah re: Q3 deck", not
// "Email Sarah").
type Reminder struct {
	Title        string `json:"title"`
	DueDate      string `json:"due_date"`
	DueTime      string `json:"due_time,omitempty"`
	Priority     string `json:"priority"`
	IntentSource string `json:"intent_source,omitempty"`
}

// OpenLoop is an unresolved question or thought surfaced by the input. Open
// loops are deliberately not action items: an unresolved question must not
// become a reminder.
type OpenLoop struct {
	Item    string `json:"item"`
	Status  string `json:"status"`
	Context string `json:"context,omitempty"`
}

// RelatedEntities groups the named entities the model recognised in the
// input.
type RelatedEntities struct {
	People    []string `json:"people,omitempty"`
	Projects  []string `json:"projects,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Concepts  []string `json:"concepts,omitempty"`
}

// FormatSignals is the model's analysis of the content's shape, used to pick
// a layout recipe for the narrative.
type FormatSignals struct {
	HasDiscreteItems   bool   `json:"has_discrete_items"`
	HasSequentialSteps bool   `json:"has_sequential_steps"`
	HasActionItems     bool   `json:"has_action_items"`
	IsReflective       bool   `json:"is_reflective"`
	TopicCount         int    `json:"topic_count"`
	Tone               string `json:"tone"`
}

// FormatComposition reports how the model chose to lay out the narrative.
// Diagnostic only — nothing downstream treats it as authoritative.
type FormatComposition struct {
	Signals *FormatSignals `json:"format_signals,omitempty"`
	Recipe  string         `json:"format_recipe,omitempty"`
}

// SynthesisResult is the unit produced by every engine operation: a
// structured note plus its extracted action set. Extraction-only calls leave
// Narrative empty and fill only Summary.
type SynthesisResult struct {
	// Narrative is the full formatted note body as read by the user.
	Narrative string `json:"narrative,omitempty"`

	// Title is a brief descriptive title.
	Title string `json:"title"`

	// Folder is always a member of the caller-supplied allowed-folder set
	// (or "Personal") after sanitization.
	Folder string `json:"folder"`

	// Tags holds at most five entries after sanitization.
	Tags []string `json:"tags"`

	// Summary is the 2–4 sentence card preview.
	Summary string `json:"summary,omitempty"`

	// RelatedEntities is optional entity metadata.
	RelatedEntities *RelatedEntities `json:"related_entities,omitempty"`

	// OpenLoops lists unresolved items that are explicitly not actions.
	OpenLoops []OpenLoop `json:"open_loops,omitempty"`

	// Calendar, Email, and Reminders are the typed action lists; the
	// category is implied by the list.
	Calendar  []CalendarEvent `json:"calendar"`
	Email     []EmailDraft    `json:"email"`
	Reminders []Reminder      `json:"reminders"`

	// NextSteps is a deprecated category retained for wire compatibility.
	// It is always empty.
	NextSteps []string `json:"next_steps"`

	// FormatComposition is optional layout diagnostics.
	FormatComposition *FormatComposition `json:"format_composition,omitempty"`
}

// UpdateType is the decision the incremental-update engine reaches for new
// content arriving on an existing note.
type UpdateType string

const (
	// UpdateAppend incorporates new content by extension.
	UpdateAppend UpdateType = "append"

	// UpdateResynthesize regenerates the note from its full input history.
	UpdateResynthesize UpdateType = "resynthesize"
)

// UpdateDecision explains an append-vs-resynthesize outcome. It is computed
// fresh on every call and surfaced to the caller for transparency; it is
// never persisted as note state.
type UpdateDecision struct {
	UpdateType UpdateType `json:"update_type"`
	Confidence float64    `json:"confidence"`
	Reason     string     `json:"reason"`
}

// SmartUpdate is the terminal output of [Engine.DecideAndUpdate]: a decision
// and the complete replacement result. No branch returns one without the
// other.
type SmartUpdate struct {
	Decision UpdateDecision  `json:"decision"`
	Result   SynthesisResult `json:"result"`
}

// AppendSummary is the result of summarizing new content in isolation before
// appending it to an existing note.
type AppendSummary struct {
	Summary   string          `json:"summary"`
	Tags      []string        `json:"tags"`
	Calendar  []CalendarEvent `json:"calendar"`
	Email     []EmailDraft    `json:"email"`
	Reminders []Reminder      `json:"reminders"`
}

// EmailMessage is a generated standalone email draft.
type EmailMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
