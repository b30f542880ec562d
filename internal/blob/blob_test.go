package blob

import (
	"io"
	"strings"
	"testing"
)

func TestPutOpenRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemStore()

	key, err := s.Put(strings.NewReader("fake audio bytes"), ".ogg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(key, ".ogg") {
		t.Errorf("key = %q, want .ogg suffix", key)
	}

	r, err := s.Open(key)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fake audio bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestKeysAreUnique(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	seen := make(map[string]bool)
	for range 50 {
		key, err := s.Put(strings.NewReader("x"), ".ogg")
		if err != nil {
			t.Fatal(err)
		}
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	key, err := s.Put(strings.NewReader("x"), ".wav")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(key); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Open(key); err == nil {
		t.Error("blob still readable after delete")
	}
	// Missing keys delete cleanly.
	if err := s.Delete("no-such-key.ogg"); err != nil {
		t.Errorf("delete missing key: %v", err)
	}
}

func TestStat(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	key, err := s.Put(strings.NewReader("12345"), ".ogg")
	if err != nil {
		t.Fatal(err)
	}
	size, _, err := s.Stat(key)
	if err != nil {
		t.Fatal(err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
}
