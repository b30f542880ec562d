package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// defaultListLimit caps List results when the caller passes 0.
const defaultListLimit = 50

// PostgresStore persists notes in PostgreSQL with pgvector summary
// embeddings. All operations are safe for concurrent use.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database at dsn, registers pgvector types
// on every connection, and runs migrations. embeddingDimensions must match
// the embedding model's output width; pass 0 to skip the vector column
// entirely (semantic search then always returns no hits).
func NewPostgresStore(ctx context.Context, dsn string, embeddingDimensions int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("notes: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("notes: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("notes: ping: %w", err)
	}
	if err := migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("notes: migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const ddlNotes = `
CREATE TABLE IF NOT EXISTS notes (
    id          UUID         PRIMARY KEY,
    title       TEXT         NOT NULL DEFAULT '',
    narrative   TEXT         NOT NULL DEFAULT '',
    folder      TEXT         NOT NULL DEFAULT 'Personal',
    tags        TEXT[]       NOT NULL DEFAULT '{}',
    summary     TEXT         NOT NULL DEFAULT '',
    actions     JSONB        NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_notes_folder     ON notes (folder);
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes (updated_at DESC);

CREATE TABLE IF NOT EXISTS note_inputs (
    id           TEXT         PRIMARY KEY,
    note_id      UUID         NOT NULL REFERENCES notes (id) ON DELETE CASCADE,
    kind         TEXT         NOT NULL,
    content      TEXT         NOT NULL,
    occurred_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    duration_s   INT          NOT NULL DEFAULT 0,
    audio_ref    TEXT         NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_note_inputs_note_id ON note_inputs (note_id, id);
`

// migrate creates the schema. The embedding column is added separately so a
// deployment without an embeddings provider needs no pgvector extension.
func migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if _, err := pool.Exec(ctx, ddlNotes); err != nil {
		return err
	}
	if embeddingDimensions <= 0 {
		return nil
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`ALTER TABLE notes ADD COLUMN IF NOT EXISTS summary_embedding vector(%d)`, embeddingDimensions),
		`CREATE INDEX IF NOT EXISTS idx_notes_summary_embedding
		     ON notes USING hnsw (summary_embedding vector_cosine_ops)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Create implements [Store].
func (s *PostgresStore) Create(ctx context.Context, n *Note) error {
	actions, err := json.Marshal(n.Actions)
	if err != nil {
		return fmt.Errorf("notes: marshal actions: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("notes: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO notes (id, title, narrative, folder, tags, summary, actions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, q, n.ID, n.Title, n.Narrative, n.Folder, n.Tags, n.Summary, actions); err != nil {
		return fmt.Errorf("notes: insert note: %w", err)
	}
	if n.SummaryEmbedding != nil {
		if err := setEmbedding(ctx, tx, n.ID, n.SummaryEmbedding); err != nil {
			return err
		}
	}
	for _, in := range n.History {
		if err := insertInput(ctx, tx, n.ID, in); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("notes: commit: %w", err)
	}
	return nil
}

// Get implements [Store].
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Note, error) {
	const q = `
		SELECT id, title, narrative, folder, tags, summary, actions, created_at, updated_at
		FROM   notes
		WHERE  id = $1`

	n := &Note{}
	var actions []byte
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&n.ID, &n.Title, &n.Narrative, &n.Folder, &n.Tags, &n.Summary,
		&actions, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notes: get %s: %w", id, err)
	}
	if err := json.Unmarshal(actions, &n.Actions); err != nil {
		return nil, fmt.Errorf("notes: unmarshal actions: %w", err)
	}

	n.History, err = s.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *PostgresStore) loadHistory(ctx context.Context, noteID uuid.UUID) ([]Input, error) {
	const q = `
		SELECT id, kind, content, occurred_at, duration_s, audio_ref
		FROM   note_inputs
		WHERE  note_id = $1
		ORDER  BY id`

	rows, err := s.pool.Query(ctx, q, noteID)
	if err != nil {
		return nil, fmt.Errorf("notes: load history: %w", err)
	}
	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Input, error) {
		var in Input
		err := row.Scan(&in.ID, &in.Kind, &in.Content, &in.OccurredAt,
			&in.AudioDurationSeconds, &in.AudioRef)
		return in, err
	})
	if err != nil {
		return nil, fmt.Errorf("notes: scan history: %w", err)
	}
	return history, nil
}

// Update implements [Store]. History entries not yet persisted (determined
// by ULID) are appended; existing rows are never modified.
func (s *PostgresStore) Update(ctx context.Context, n *Note) error {
	actions, err := json.Marshal(n.Actions)
	if err != nil {
		return fmt.Errorf("notes: marshal actions: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("notes: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE notes
		SET    title = $2, narrative = $3, folder = $4, tags = $5,
		       summary = $6, actions = $7, updated_at = now()
		WHERE  id = $1`
	tag, err := tx.Exec(ctx, q, n.ID, n.Title, n.Narrative, n.Folder, n.Tags, n.Summary, actions)
	if err != nil {
		return fmt.Errorf("notes: update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if n.SummaryEmbedding != nil {
		if err := setEmbedding(ctx, tx, n.ID, n.SummaryEmbedding); err != nil {
			return err
		}
	}
	for _, in := range n.History {
		if err := insertInput(ctx, tx, n.ID, in); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("notes: commit: %w", err)
	}
	return nil
}

// Delete implements [Store]. History rows cascade.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("notes: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List implements [Store].
func (s *PostgresStore) List(ctx context.Context, folder string, limit int) ([]*Note, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := `
		SELECT id, title, narrative, folder, tags, summary, actions, created_at, updated_at
		FROM   notes`
	args := []any{limit}
	if folder != "" {
		q += `
		WHERE  folder = $2`
		args = append(args, folder)
	}
	q += `
		ORDER  BY updated_at DESC
		LIMIT  $1`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("notes: list: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanNote)
	if err != nil {
		return nil, fmt.Errorf("notes: scan list: %w", err)
	}
	return out, nil
}

// SearchSimilar implements [Store]. It returns zero hits when the embedding
// column is absent or no note carries an embedding.
func (s *PostgresStore) SearchSimilar(ctx context.Context, query []float32, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	const q = `
		SELECT id, title, narrative, folder, tags, summary, actions, created_at, updated_at,
		       summary_embedding <=> $1 AS distance
		FROM   notes
		WHERE  summary_embedding IS NOT NULL
		ORDER  BY distance
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(query), limit)
	if err != nil {
		return nil, fmt.Errorf("notes: search: %w", err)
	}
	hits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SearchHit, error) {
		n := &Note{}
		var (
			actions []byte
			hit     SearchHit
		)
		if err := row.Scan(&n.ID, &n.Title, &n.Narrative, &n.Folder, &n.Tags,
			&n.Summary, &actions, &n.CreatedAt, &n.UpdatedAt, &hit.Distance); err != nil {
			return SearchHit{}, err
		}
		if err := json.Unmarshal(actions, &n.Actions); err != nil {
			return SearchHit{}, err
		}
		hit.Note = n
		return hit, nil
	})
	if err != nil {
		return nil, fmt.Errorf("notes: scan search: %w", err)
	}
	if hits == nil {
		hits = []SearchHit{}
	}
	return hits, nil
}

// Ping implements [Store].
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements [Store].
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func setEmbedding(ctx context.Context, tx pgx.Tx, id uuid.UUID, embedding []float32) error {
	const q = `UPDATE notes SET summary_embedding = $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, q, id, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("notes: set embedding: %w", err)
	}
	return nil
}

func insertInput(ctx context.Context, tx pgx.Tx, noteID uuid.UUID, in Input) error {
	const q = `
		INSERT INTO note_inputs (id, note_id, kind, content, occurred_at, duration_s, audio_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`
	if _, err := tx.Exec(ctx, q, in.ID, noteID, string(in.Kind), in.Content,
		in.OccurredAt, in.AudioDurationSeconds, in.AudioRef); err != nil {
		return fmt.Errorf("notes: insert input: %w", err)
	}
	return nil
}

func scanNote(row pgx.CollectableRow) (*Note, error) {
	n := &Note{}
	var actions []byte
	if err := row.Scan(&n.ID, &n.Title, &n.Narrative, &n.Folder, &n.Tags,
		&n.Summary, &actions, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(actions, &n.Actions); err != nil {
		return nil, err
	}
	return n, nil
}
