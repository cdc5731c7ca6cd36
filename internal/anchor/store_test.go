package anchor

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// TestStoreAdd tests insertion ordering, clamping, and epsilon merging.
func TestStoreAdd(t *testing.T) {
	t.Parallel()

	t.Run("keeps anchors sorted ascending regardless of insertion order", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		for _, c := range []coords.Coordinate{500, 10, 250} {
			if !s.Add(c) {
				t.Errorf("expected Add(%v) to create a new anchor", c)
			}
		}

		want := []coords.Coordinate{10, 250, 500}
		if diff := cmp.Diff(want, s.All()); diff != "" {
			t.Errorf("anchor order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("anchors within epsilon collapse to one", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		s.Add(100.0)
		if s.Add(100.4) {
			t.Error("expected anchor within epsilon to merge")
		}
		if s.Len() != 1 {
			t.Errorf("expected 1 anchor, got %d", s.Len())
		}
	})

	t.Run("anchors just past epsilon stay distinct", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		s.Add(100.0)
		if !s.Add(100.6) {
			t.Error("expected anchor past epsilon to be created")
		}
		if s.Len() != 2 {
			t.Errorf("expected 2 anchors, got %d", s.Len())
		}
	})

	t.Run("negative coordinate clamps to zero", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		s.Add(-50)
		if got := s.At(0); got != 0 {
			t.Errorf("expected clamp to 0, got %v", got)
		}
	})

	t.Run("coordinate past document height clamps inside", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		s.Add(5000)
		if got := s.At(0); got != 999 {
			t.Errorf("expected clamp to 999, got %v", got)
		}
	})
}

// TestRemoveNearest tests nearest-match removal including the documented
// lower-coordinate tie-break.
func TestRemoveNearest(t *testing.T) {
	t.Parallel()

	newStore := func() *Store {
		s := NewStore(1000)
		for _, c := range []coords.Coordinate{10, 20, 30} {
			s.Add(c)
		}
		return s
	}

	t.Run("removes the strictly nearest anchor", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		removed, err := s.RemoveNearest(24)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if removed != 20 {
			t.Errorf("expected to remove 20, removed %v", removed)
		}
	})

	t.Run("equidistant candidates remove the lower coordinate", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		removed, err := s.RemoveNearest(25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if removed != 20 {
			t.Errorf("expected tie-break to remove 20, removed %v", removed)
		}
		if !slices.Contains(s.All(), 30) {
			t.Error("expected 30 to survive the tie-break")
		}
	})

	t.Run("empty store returns ErrEmpty", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		if _, err := s.RemoveNearest(10); !errors.Is(err, ErrEmpty) {
			t.Errorf("expected ErrEmpty, got %v", err)
		}
	})
}

// TestReplace verifies wholesale replacement normalizes the input.
func TestReplace(t *testing.T) {
	t.Parallel()

	s := NewStore(1000)
	s.Add(1)
	s.Replace([]coords.Coordinate{300, 100, 100.2, -5})

	// 100 and 100.2 merge; -5 clamps to 0.
	want := []coords.Coordinate{0, 100, 300}
	if diff := cmp.Diff(want, s.All()); diff != "" {
		t.Errorf("replaced contents mismatch (-want +got):\n%s", diff)
	}
}

// TestSaveLoadRoundTrip verifies that saving then loading reproduces the
// same ordered anchor set.
func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "anchors_test.json")

	s := NewStore(10000)
	original := []coords.Coordinate{12.5, 840.25, 4031.75, 9999 - 1}
	for _, c := range original {
		s.Add(c)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := NewStore(10000)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	got := loaded.All()
	want := s.All()
	if len(got) != len(want) {
		t.Fatalf("expected %d anchors, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-9 {
			t.Errorf("anchor %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if !slices.IsSorted(got) {
		t.Error("loaded anchors are not in ascending order")
	}
}

// TestLoadFailuresPreserveState verifies the non-fatal load error policy:
// the prior anchor set survives missing or malformed files.
func TestLoadFailuresPreserveState(t *testing.T) {
	t.Parallel()

	t.Run("missing file leaves store untouched", func(t *testing.T) {
		t.Parallel()
		s := NewStore(1000)
		s.Add(42)
		err := s.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
		if err == nil {
			t.Fatal("expected an error for a missing file")
		}
		if s.Len() != 1 || s.At(0) != 42 {
			t.Errorf("store state changed after failed load: %v", s.All())
		}
	})

	t.Run("malformed file leaves store untouched", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte(`{"not": "a list"}`), 0o600); err != nil {
			t.Fatal(err)
		}

		s := NewStore(1000)
		s.Add(42)
		if err := s.Load(path); err == nil {
			t.Fatal("expected an error for a malformed file")
		}
		if s.Len() != 1 || s.At(0) != 42 {
			t.Errorf("store state changed after failed load: %v", s.All())
		}
	})
}
