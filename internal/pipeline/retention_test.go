package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestCleanOldFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	const (
		old      = "20240531_100000_aaaaaaaa_original.jpg"
		older    = "20240529_120000_bbbbbbbb_hist_processed.png"
		upload   = "20240529_120000_bbbbbbbb_upload"
		fresh    = "20240601_110000_cccccccc_processed.jpg"
		boundary = "20240531_120000_dddddddd_original.jpg"
	)
	touch(t, filepath.Join(dir, old), now.Add(-25*time.Hour))
	touch(t, filepath.Join(dir, older), now.Add(-72*time.Hour))
	touch(t, filepath.Join(dir, upload), now.Add(-72*time.Hour))
	touch(t, filepath.Join(dir, fresh), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, boundary), now.Add(-24*time.Hour))

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(sub, old), now.Add(-1000*time.Hour))

	removed, err := CleanOldFiles(dir, DefaultMaxAge, now)
	if err != nil {
		t.Fatalf("CleanOldFiles failed: %v", err)
	}

	want := []string{filepath.Join(dir, older), filepath.Join(dir, upload), filepath.Join(dir, old)}
	if len(removed) != len(want) {
		t.Fatalf("removed: got %v, want %v", removed, want)
	}
	for i := range want {
		if removed[i] != want[i] {
			t.Errorf("removed[%d]: got %s, want %s", i, removed[i], want[i])
		}
	}

	for _, keep := range []string{fresh, boundary, filepath.Join("nested", old)} {
		if _, err := os.Stat(filepath.Join(dir, keep)); err != nil {
			t.Errorf("%s should have been kept: %v", keep, err)
		}
	}
}

func TestCleanOldFiles_KeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-48 * time.Hour)

	foreign := []string{
		"someone-elses-notes.txt",
		"photo.jpg",
		"20240530_120000_aaaaaaaa_original.jpg.bak",
		"20240530_120000_AAAAAAAA_original.jpg",
		"x20240530_120000_aaaaaaaa_upload",
	}
	for _, name := range foreign {
		touch(t, filepath.Join(dir, name), stale)
	}
	artifact := "20240530_120000_aaaaaaaa_original.jpg"
	touch(t, filepath.Join(dir, artifact), stale)

	removed, err := CleanOldFiles(dir, time.Hour, now)
	if err != nil {
		t.Fatalf("CleanOldFiles failed: %v", err)
	}
	if len(removed) != 1 || filepath.Base(removed[0]) != artifact {
		t.Errorf("removed: got %v, want only %s", removed, artifact)
	}
	for _, name := range foreign {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should have been kept: %v", name, err)
		}
	}
}

func TestCleanOldFiles_MissingDir(t *testing.T) {
	removed, err := CleanOldFiles(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Now())
	if err != nil || len(removed) != 0 {
		t.Fatalf("got %v, %v; want nothing", removed, err)
	}
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	stale := filepath.Join(dir, "20240101_000000_aaaaaaaa_processed.jpg")
	touch(t, stale, now.Add(-48*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Sweeper{Dir: dir, MaxAge: time.Hour, Interval: time.Minute}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file should be removed by the initial sweep")
	}
}

func TestSweeper_DefaultMaxAge(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	const (
		a = "20240531_130000_aaaaaaaa_original.jpg"
		b = "20240531_110000_bbbbbbbb_original.jpg"
	)
	touch(t, filepath.Join(dir, a), now.Add(-23*time.Hour))
	touch(t, filepath.Join(dir, b), now.Add(-25*time.Hour))

	s := &Sweeper{Dir: dir, now: func() time.Time { return now }}
	removed, err := s.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || filepath.Base(removed[0]) != b {
		t.Errorf("removed: got %v, want only %s", removed, b)
	}
}

func TestBaseName(t *testing.T) {
	local := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2024, 1, 2, 6, 4, 5, 0, local)
	id := uuid.MustParse("ABCDEF01-2345-4678-9abc-def012345678")

	if got, want := BaseName(at, id), "20240102_030405_abcdef01"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestIsArtifactName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"20240102_030405_abcdef01_original.jpg", true},
		{"20240102_030405_abcdef01_processed.jpg", true},
		{"20240102_030405_abcdef01_hist_original.png", true},
		{"20240102_030405_abcdef01_hist_processed.png", true},
		{"20240102_030405_abcdef01_upload", false},
		{"../20240102_030405_abcdef01_original.jpg", false},
		{"20240102_030405_ABCDEF01_original.jpg", false},
		{"passwd", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsArtifactName(tt.name); got != tt.want {
			t.Errorf("IsArtifactName(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsManagedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"20240102_030405_abcdef01_original.jpg", true},
		{"20240102_030405_abcdef01_hist_processed.png", true},
		{"20240102_030405_abcdef01_upload", true},
		{"20240102_030405_abcdef01_upload.txt", false},
		{"notes_upload", false},
		{"someone-elses-notes.txt", false},
	}

	for _, tt := range tests {
		if got := IsManagedName(tt.name); got != tt.want {
			t.Errorf("IsManagedName(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}
