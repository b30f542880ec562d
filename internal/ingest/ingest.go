// Package ingest turns uploaded audio and typed text into note inputs.
//
// Audio ingestion runs blob storage and transcription concurrently: the
// original recording is durable even when transcription fails, and a slow
// transcription does not delay the write. The produced RawInputs feed the
// synthesis engine; ingest itself never calls the generative model.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/murmurhq/murmur/internal/blob"
	"github.com/murmurhq/murmur/internal/observe"
	"github.com/murmurhq/murmur/internal/synthesis"
	"github.com/murmurhq/murmur/pkg/provider/stt"
)

// ErrNoTranscriber is returned for audio ingestion when no speech-to-text
// provider is configured.
var ErrNoTranscriber = errors.New("ingest: no transcriber configured")

// Audio is an uploaded recording to ingest.
type Audio struct {
	// Data is the raw audio file content.
	Data []byte

	// Filename is the client-supplied name; only the extension is kept.
	Filename string

	// ContentType is the MIME type (e.g. "audio/ogg").
	ContentType string

	// DurationSeconds is the recording length as reported by the client.
	// Zero when unknown.
	DurationSeconds int
}

// Service converts uploads into note inputs. Construct with [NewService].
type Service struct {
	transcriber stt.Transcriber
	blobs       *blob.Store
	metrics     *observe.Metrics
}

// NewService creates an ingest service. transcriber may be nil, which
// disables audio ingestion; metrics may be nil.
func NewService(transcriber stt.Transcriber, blobs *blob.Store, metrics *observe.Metrics) *Service {
	return &Service{transcriber: transcriber, blobs: blobs, metrics: metrics}
}

// IngestText wraps typed text as a note input.
func (s *Service) IngestText(content string) synthesis.RawInput {
	return synthesis.RawInput{
		Kind:       synthesis.InputText,
		Content:    content,
		OccurredAt: time.Now().UTC(),
	}
}

// IngestAudio stores the recording and transcribes it, concurrently, and
// returns the resulting input. The blob is removed again if transcription
// fails, so a failed ingestion leaves no orphaned audio.
func (s *Service) IngestAudio(ctx context.Context, audio Audio) (synthesis.RawInput, error) {
	if s.transcriber == nil {
		return synthesis.RawInput{}, ErrNoTranscriber
	}

	if s.metrics != nil {
		s.metrics.ActiveIngestions.Add(ctx, 1)
		defer s.metrics.ActiveIngestions.Add(ctx, -1)
	}

	var (
		key        string
		transcript *stt.Transcript
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		key, err = s.blobs.Put(bytes.NewReader(audio.Data), path.Ext(audio.Filename))
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		transcript, err = s.transcriber.Transcribe(gctx, stt.Audio{
			Data:        audio.Data,
			Filename:    audio.Filename,
			ContentType: audio.ContentType,
		})
		if s.metrics != nil {
			s.metrics.TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
		}
		if err != nil {
			return fmt.Errorf("ingest: transcribe: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if key != "" {
			s.blobs.Delete(key)
		}
		return synthesis.RawInput{}, err
	}

	duration := audio.DurationSeconds
	if duration == 0 {
		duration = transcript.DurationSeconds
	}
	return synthesis.RawInput{
		Kind:                 synthesis.InputAudio,
		Content:              transcript.Text,
		OccurredAt:           time.Now().UTC(),
		AudioDurationSeconds: duration,
		AudioRef:             key,
	}, nil
}
