package util

import "testing"

func TestContentHash(t *testing.T) {
	t.Run("stable", func(t *testing.T) {
		a := ContentHash([]byte("hello"))
		b := ContentHash([]byte("hello"))
		if a != b {
			t.Error("hash should be deterministic")
		}
	})

	t.Run("distinguishes content", func(t *testing.T) {
		if ContentHash([]byte("a")) == ContentHash([]byte("b")) {
			t.Error("different content should hash differently")
		}
	})

	t.Run("hex encoded sha256", func(t *testing.T) {
		h := ContentHash([]byte("x"))
		if len(h) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(h))
		}
	})

	t.Run("string helper matches", func(t *testing.T) {
		if ContentHashString("x") != ContentHash([]byte("x")) {
			t.Error("string helper should match byte helper")
		}
	})
}
