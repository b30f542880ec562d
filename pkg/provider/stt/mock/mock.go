// Package mock provides a test double for the stt.Transcriber interface.
package mock

import (
	"context"
	"sync"

	"github.com/murmurhq/murmur/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Audio is the payload passed to Transcribe.
	Audio stt.Audio
}

// Transcriber is a mock implementation of stt.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Transcript is returned by Transcribe. May be nil (returns nil, nil).
	Transcript *stt.Transcript

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Delay, if set, is how long Transcribe blocks before returning (or
	// until ctx is cancelled). Use it to exercise concurrent ingestion.
	Delay func(ctx context.Context) error

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

// Transcribe records the call and returns Transcript, Err.
func (t *Transcriber) Transcribe(ctx context.Context, audio stt.Audio) (*stt.Transcript, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, TranscribeCall{Ctx: ctx, Audio: audio})
	delay := t.Delay
	t.mu.Unlock()

	if delay != nil {
		if err := delay(ctx); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Transcript, t.Err
}

// Ensure Transcriber implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Transcriber)(nil)
