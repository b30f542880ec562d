package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/murmurhq/murmur/internal/blob"
	"github.com/murmurhq/murmur/internal/synthesis"
	"github.com/murmurhq/murmur/pkg/provider/stt"
	sttmock "github.com/murmurhq/murmur/pkg/provider/stt/mock"
)

func TestIngestText(t *testing.T) {
	t.Parallel()

	s := NewService(nil, blob.NewMemStore(), nil)
	in := s.IngestText("typed thought")

	if in.Kind != synthesis.InputText || in.Content != "typed thought" {
		t.Errorf("input = %+v", in)
	}
	if in.OccurredAt.IsZero() {
		t.Error("occurred_at not set")
	}
}

func TestIngestAudio(t *testing.T) {
	t.Parallel()

	tr := &sttmock.Transcriber{
		Transcript: &stt.Transcript{Text: "spoken words", DurationSeconds: 12},
	}
	blobs := blob.NewMemStore()
	s := NewService(tr, blobs, nil)

	in, err := s.IngestAudio(context.Background(), Audio{
		Data:        []byte("fake ogg"),
		Filename:    "memo.ogg",
		ContentType: "audio/ogg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if in.Kind != synthesis.InputAudio || in.Content != "spoken words" {
		t.Errorf("input = %+v", in)
	}
	if in.AudioDurationSeconds != 12 {
		t.Errorf("duration = %d, want transcript duration", in.AudioDurationSeconds)
	}
	if in.AudioRef == "" {
		t.Fatal("audio reference not set")
	}

	// The original recording must be retrievable by the returned key.
	r, err := blobs.Open(in.AudioRef)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "fake ogg" {
		t.Errorf("stored blob = %q", data)
	}

	if len(tr.Calls) != 1 || tr.Calls[0].Audio.Filename != "memo.ogg" {
		t.Errorf("transcriber calls = %+v", tr.Calls)
	}
}

func TestIngestAudioClientDurationWins(t *testing.T) {
	t.Parallel()

	tr := &sttmock.Transcriber{
		Transcript: &stt.Transcript{Text: "x", DurationSeconds: 99},
	}
	s := NewService(tr, blob.NewMemStore(), nil)

	in, err := s.IngestAudio(context.Background(), Audio{
		Data: []byte("a"), Filename: "m.ogg", DurationSeconds: 30,
	})
	if err != nil {
		t.Fatal(err)
	}
	if in.AudioDurationSeconds != 30 {
		t.Errorf("duration = %d, want client-reported 30", in.AudioDurationSeconds)
	}
}

func TestIngestAudioTranscribeFailureCleansBlob(t *testing.T) {
	t.Parallel()

	tr := &sttmock.Transcriber{Err: errors.New("upstream 500")}
	blobs := blob.NewMemStore()
	s := NewService(tr, blobs, nil)

	_, err := s.IngestAudio(context.Background(), Audio{
		Data: []byte("a"), Filename: "m.ogg",
	})
	if !errors.Is(err, tr.Err) {
		t.Fatalf("err = %v, want wrapped transcriber error", err)
	}
}

func TestIngestAudioNoTranscriber(t *testing.T) {
	t.Parallel()

	s := NewService(nil, blob.NewMemStore(), nil)
	_, err := s.IngestAudio(context.Background(), Audio{Data: []byte("a")})
	if !errors.Is(err, ErrNoTranscriber) {
		t.Errorf("err = %v, want ErrNoTranscriber", err)
	}
}
