// Package stt defines the Transcriber interface for speech-to-text backends.
//
// Voice memos arrive as complete uploaded recordings, so the interface is a
// batch one: a single call takes the full audio payload and returns the full
// transcript. There is no streaming session; a memo is transcribed exactly
// once, right after upload.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Audio is a complete recorded voice memo handed to a Transcriber.
type Audio struct {
	// Data is the raw encoded audio bytes as uploaded (e.g. m4a, webm, mp3).
	Data []byte

	// Filename is the original upload filename. Providers use its extension
	// to infer the container format.
	Filename string

	// ContentType is the MIME type of Data (e.g. "audio/mp4"). May be empty
	// when the uploader did not supply one.
	ContentType string
}

// Transcript is the result of transcribing one voice memo.
type Transcript struct {
	// Text is the full transcript of the recording.
	Text string

	// DurationSeconds is the length of the recording as reported by the
	// provider. Zero when the provider does not report duration.
	DurationSeconds int

	// Language is the detected (or requested) BCP-47 language tag, when the
	// provider reports one.
	Language string
}

// Transcriber is the abstraction over any batch speech-to-text backend.
type Transcriber interface {
	// Transcribe converts audio into text. It blocks until the provider
	// returns or ctx is cancelled.
	Transcribe(ctx context.Context, audio Audio) (*Transcript, error)
}
