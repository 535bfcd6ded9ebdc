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
	"time"

	"github.com/ironsheep/image-cross/internal/pipeline"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "image-cross" {
		t.Errorf("expected use 'image-cross', got %q", cmd.Use)
	}
	if !cmd.SilenceUsage {
		t.Error("expected SilenceUsage")
	}

	want := []string{"serve", "mcp", "process", "cleanup", "beverage", "config", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}

	for _, flag := range []string{"config", "log-level", "log-format", "output-dir"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag %q", flag)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "image-cross version ") {
		t.Errorf("unexpected output %q", stdout)
	}
	if !strings.Contains(stdout, "commit:") {
		t.Errorf("expected commit line in %q", stdout)
	}
}

func TestConfigCmd(t *testing.T) {
	out := t.TempDir()
	stdout, _, err := execute(t, "config", "--output-dir", out, "--log-level", "debug")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"dir: " + out, "level: debug", "max_size_mb: 5"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestConfigCmd_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "config", "--log-level", "loud")
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestProcessCmd(t *testing.T) {
	src := writePNG(t, 120, 60)
	out := t.TempDir()

	stdout, _, err := execute(t, "process", src, "--output-dir", out, "--cross-type", "horizontal", "--color", "#0000FF", "--json")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	var result pipeline.Result
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if result.CrossType != "horizontal" || result.Color != "#0000FF" || result.Thickness != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("expected 4 artifacts, got %d", len(entries))
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should be kept: %v", err)
	}
}

func TestProcessCmd_Errors(t *testing.T) {
	src := writePNG(t, 20, 20)

	tests := []struct {
		name string
		args []string
	}{
		{"no file", []string{"process"}},
		{"bad cross type", []string{"process", src, "--cross-type", "star"}},
		{"bad color", []string{"process", src, "--color", "teal"}},
		{"missing file", []string{"process", filepath.Join(t.TempDir(), "nope.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			_, _, err := execute(t, append(tt.args, "--output-dir", out)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if entries, _ := os.ReadDir(out); len(entries) != 0 {
				t.Errorf("expected no artifacts, got %d", len(entries))
			}
		})
	}
}

func TestCleanupCmd(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "20240101_000000_aaaaaaaa_original.jpg")
	newFile := filepath.Join(dir, "20240101_000000_bbbbbbbb_original.jpg")
	notes := filepath.Join(dir, "notes.txt")
	for _, p := range []string{oldFile, newFile, notes} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-3 * time.Hour)
	for _, p := range []string{oldFile, notes} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	stdout, stderr, err := execute(t, "cleanup", "--output-dir", dir, "--max-age", "2h")
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if strings.TrimSpace(stdout) != oldFile {
		t.Errorf("expected %s to be reported, got %q", oldFile, stdout)
	}
	if !strings.Contains(stderr, "removed 1 file(s)") {
		t.Errorf("unexpected summary %q", stderr)
	}
	for _, keep := range []string{newFile, notes} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should be kept: %v", keep, err)
		}
	}
}

func TestCleanupCmd_NegativeMaxAge(t *testing.T) {
	if _, _, err := execute(t, "cleanup", "--output-dir", t.TempDir(), "--max-age", "-1h"); err == nil {
		t.Fatal("expected error for negative max-age")
	}
}
