// Package notes defines the note aggregate and its persistence interface.
//
// A note's authoritative content is its ordered input history; the narrative,
// title, and extracted actions are derived state produced by the synthesis
// engine and stored for fast reads. Stores never reorder history: inputs are
// keyed by ULIDs, whose lexicographic order is their arrival order.
package notes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/murmurhq/murmur/internal/synthesis"
)

// ErrNotFound is returned by store lookups for unknown note IDs.
var ErrNotFound = errors.New("notes: not found")

// Input is one persisted entry of a note's input history. The ULID id
// doubles as the ordering key.
type Input struct {
	// ID is a ULID assigned at ingestion time.
	ID string `json:"id"`

	synthesis.RawInput
}

// Actions groups the extracted action lists persisted with a note.
type Actions struct {
	Calendar  []synthesis.CalendarEvent `json:"calendar"`
	Email     []synthesis.EmailDraft    `json:"email"`
	Reminders []synthesis.Reminder      `json:"reminders"`
}

// Note is the persisted aggregate: derived content plus the input history it
// was derived from.
type Note struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title     string   `json:"title"`
	Narrative string   `json:"narrative"`
	Folder    string   `json:"folder"`
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`

	Actions Actions `json:"actions"`

	// History is the ordered sequence of raw inputs, oldest first.
	History []Input `json:"history"`

	// SummaryEmbedding is the semantic-search vector for Summary. Nil when
	// embeddings are disabled.
	SummaryEmbedding []float32 `json:"-"`
}

// ApplyResult overwrites the note's derived content from a synthesis result.
// History is untouched; UpdatedAt is left for the store to set.
func (n *Note) ApplyResult(r *synthesis.SynthesisResult) {
	n.Title = r.Title
	n.Narrative = r.Narrative
	n.Folder = r.Folder
	n.Tags = r.Tags
	n.Summary = r.Summary
	n.Actions = Actions{
		Calendar:  r.Calendar,
		Email:     r.Email,
		Reminders: r.Reminders,
	}
}

// RawHistory returns the history as synthesis inputs, in order.
func (n *Note) RawHistory() []synthesis.RawInput {
	out := make([]synthesis.RawInput, len(n.History))
	for i, in := range n.History {
		out[i] = in.RawInput
	}
	return out
}

// SearchHit pairs a note with its semantic-search distance.
type SearchHit struct {
	Note *Note `json:"note"`

	// Distance is the cosine distance between the query vector and the
	// note's summary embedding. Lower is closer.
	Distance float64 `json:"distance"`
}

// Store persists notes. Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new note. The note's ID must be set by the caller.
	Create(ctx context.Context, n *Note) error

	// Get loads a note with its full input history. Returns [ErrNotFound]
	// for unknown IDs.
	Get(ctx context.Context, id uuid.UUID) (*Note, error)

	// Update overwrites a note's derived content and embedding. History
	// rows already persisted are untouched; history entries present on n
	// but not yet stored are appended.
	Update(ctx context.Context, n *Note) error

	// Delete removes a note and its history. Returns [ErrNotFound] for
	// unknown IDs.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns notes ordered by most recently updated, without history.
	// folder filters when non-empty; limit caps the result (0 = default).
	List(ctx context.Context, folder string, limit int) ([]*Note, error)

	// SearchSimilar returns the notes whose summary embeddings are nearest
	// to query, closest first. Notes without embeddings are not returned.
	SearchSimilar(ctx context.Context, query []float32, limit int) ([]SearchHit, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close()
}
