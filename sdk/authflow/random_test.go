package authflow

import (
	"strings"
	"testing"
)

func TestGenerateRandomString(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 16, 21, 32, 64, 128} {
		got, err := GenerateRandomString(length)
		if err != nil {
			t.Fatalf("unexpected error for length %d: %v", length, err)
		}
		if len(got) != length {
			t.Fatalf("length = %d, want %d", len(got), length)
		}
		for _, r := range got {
			if !strings.ContainsRune(randomAlphabet, r) {
				t.Fatalf("character %q outside the URL-safe alphabet", r)
			}
		}
	}
}

func TestGenerateRandomStringInvalidLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -1} {
		if _, err := GenerateRandomString(length); err == nil {
			t.Fatalf("expected error for length %d", length)
		}
	}
}

func TestGenerateRandomStringIndependence(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		got, err := GenerateRandomString(32)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[got]; dup {
			t.Fatalf("duplicate random string %q", got)
		}
		seen[got] = struct{}{}
	}
}

func TestRandomLength(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		if got := randomLength(16, 21); got < 16 || got > 21 {
			t.Fatalf("randomLength(16, 21) = %d", got)
		}
	}
	if got := randomLength(5, 5); got != 5 {
		t.Fatalf("randomLength(5, 5) = %d", got)
	}
}
