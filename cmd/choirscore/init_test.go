package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/novotnyt/choir-score-reader/internal/config"
)

func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates configuration file at given path", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "config", ".choirscore")

		var buf bytes.Buffer
		cmd := NewInitCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", out})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("configuration file not created: %v", err)
		}
		if !strings.Contains(string(content), "zoom_step") {
			t.Error("template missing zoom_step documentation")
		}
		if !strings.Contains(buf.String(), "Created configuration file") {
			t.Errorf("missing confirmation message:\n%s", buf.String())
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), ".choirscore")
		if err := os.WriteFile(out, []byte("existing"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", out})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for existing file")
		}

		content, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "existing" {
			t.Error("existing file was modified")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), ".choirscore")
		if err := os.WriteFile(out, []byte("existing"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", out, "-f"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) == "existing" {
			t.Error("file was not overwritten")
		}
	})

	t.Run("generated template is loadable", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), ".choirscore")

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", out})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// The template ships fully commented out, so it must parse as an
		// empty configuration.
		cf, err := config.LoadConfigFile(out)
		if err != nil {
			t.Fatalf("generated template does not load: %v", err)
		}
		if len(cf.Scores) != 0 {
			t.Errorf("template should not define scores, got %d", len(cf.Scores))
		}
	})
}
