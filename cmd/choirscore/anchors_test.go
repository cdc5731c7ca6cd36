package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestScore creates a score directory with the given number of white
// PNG pages and returns its path.
func writeTestScore(t *testing.T, pages int) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "magnificat")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	for i := range pages {
		img := image.NewRGBA(image.Rect(0, 0, 100, 150))
		for y := range 150 {
			for x := range 100 {
				img.Set(x, y, color.White)
			}
		}
		f, err := os.Create(filepath.Join(dir, "page"+string(rune('a'+i))+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// writeTestAnchors writes an anchor file next to the score.
func writeTestAnchors(t *testing.T, scoreDir string, anchors []float64) string {
	t.Helper()

	data, err := json.MarshalIndent(anchors, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(filepath.Dir(scoreDir), "anchors_"+filepath.Base(scoreDir)+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewAnchorsCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists anchors as markdown by default", func(t *testing.T) {
		t.Parallel()

		scoreDir := writeTestScore(t, 2)
		writeTestAnchors(t, scoreDir, []float64{30, 120.5})

		var buf bytes.Buffer
		cmd := NewAnchorsCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{scoreDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "# Setlist: magnificat") {
			t.Errorf("missing setlist header:\n%s", out)
		}
		if !strings.Contains(out, "120.5") {
			t.Errorf("missing anchor position:\n%s", out)
		}
	})

	t.Run("json export round trips", func(t *testing.T) {
		t.Parallel()

		scoreDir := writeTestScore(t, 2)
		writeTestAnchors(t, scoreDir, []float64{30, 120.5})

		var buf bytes.Buffer
		cmd := NewAnchorsCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--json", scoreDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var setlist struct {
			ScoreName string    `json:"score_name"`
			PageCount int       `json:"page_count"`
			Anchors   []float64 `json:"anchors"`
		}
		if err := json.Unmarshal(buf.Bytes(), &setlist); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if setlist.ScoreName != "magnificat" {
			t.Errorf("ScoreName = %q", setlist.ScoreName)
		}
		if setlist.PageCount != 2 {
			t.Errorf("PageCount = %d, want 2", setlist.PageCount)
		}
		if len(setlist.Anchors) != 2 {
			t.Errorf("got %d anchors, want 2", len(setlist.Anchors))
		}
	})

	t.Run("missing anchor file yields an empty setlist", func(t *testing.T) {
		t.Parallel()

		scoreDir := writeTestScore(t, 1)

		var buf bytes.Buffer
		cmd := NewAnchorsCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{scoreDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No anchors marked.") {
			t.Errorf("missing empty-set note:\n%s", buf.String())
		}
	})

	t.Run("writes export to output file", func(t *testing.T) {
		t.Parallel()

		scoreDir := writeTestScore(t, 1)
		writeTestAnchors(t, scoreDir, []float64{50})
		outFile := filepath.Join(t.TempDir(), "export", "setlist.md")

		cmd := NewAnchorsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--markdown", "-o", outFile, scoreDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outFile)
		if err != nil {
			t.Fatalf("export file not created: %v", err)
		}
		if !strings.Contains(string(content), "# Setlist: magnificat") {
			t.Error("export file missing setlist content")
		}
	})

	t.Run("conflicting formats are rejected", func(t *testing.T) {
		t.Parallel()

		scoreDir := writeTestScore(t, 1)

		cmd := NewAnchorsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--json", "--markdown", scoreDir})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for conflicting formats")
		}
	})

	t.Run("missing score directory is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewAnchorsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent")})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for missing score")
		}
	})
}
