package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *MediaStore {
	t.Helper()
	dir := t.TempDir()
	m, err := NewMediaStore(
		filepath.Join(dir, "photos"),
		filepath.Join(dir, "thumbs"),
		filepath.Join(dir, "avatars"),
	)
	if err != nil {
		t.Fatalf("NewMediaStore: %v", err)
	}
	return m
}

func TestNewMediaStoreCreatesDirs(t *testing.T) {
	m := newTestStore(t)
	for _, dir := range []string{m.photoDir, m.thumbDir, m.avatarDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s missing", dir)
		}
	}
}

func TestStagePath(t *testing.T) {
	final := filepath.Join("data", "photos", "abc.jpg")
	staged := StagePath(final)

	if filepath.Dir(staged) != filepath.Dir(final) {
		t.Errorf("staged file left its directory: %s", staged)
	}
	if filepath.Base(staged) != ".abc.jpg.tmp" {
		t.Errorf("staged name = %s", filepath.Base(staged))
	}
}

func TestStagePromote(t *testing.T) {
	m := newTestStore(t)
	final := m.PhotoPath("p1", ".jpg")
	content := []byte("fake image bytes")

	if err := m.Stage(final, content); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if m.Exists(final) {
		t.Fatal("final path should not exist before promote")
	}
	if !m.Exists(StagePath(final)) {
		t.Fatal("staged file missing")
	}

	if err := m.Promote(final); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if m.Exists(StagePath(final)) {
		t.Error("staged file should be gone after promote")
	}

	got, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("read final: %v", err)
	}
	if string(got) != string(content) {
		t.Error("content changed during promote")
	}
}

func TestDiscard(t *testing.T) {
	m := newTestStore(t)
	final := m.PhotoPath("p2", ".png")

	if err := m.Stage(final, []byte("x")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	m.Discard(final)
	if m.Exists(StagePath(final)) {
		t.Error("staged file should be removed")
	}

	// Discarding again must be quiet.
	m.Discard(final)
}

func TestRemoveToleratesMissing(t *testing.T) {
	m := newTestStore(t)
	m.Remove(m.PhotoPath("never-written", ".jpg"))
	m.Remove("")
}

func TestPathLayout(t *testing.T) {
	m := newTestStore(t)

	if got := filepath.Base(m.PhotoPath("id1", ".webm")); got != "id1.webm" {
		t.Errorf("photo name = %s", got)
	}
	if got := filepath.Base(m.ThumbnailPath("id1")); got != "id1_thumb.jpg" {
		t.Errorf("thumbnail name = %s", got)
	}
	if got := filepath.Base(m.AvatarPath("u1", ".png")); got != "u1.png" {
		t.Errorf("avatar name = %s", got)
	}
}

func TestIsVideo(t *testing.T) {
	cases := map[string]bool{
		"clip.mp4":    true,
		"CLIP.MOV":    true,
		"a.webm":      true,
		"b.avi":       true,
		"photo.jpg":   false,
		"photo.jpeg":  false,
		"archive.mp3": false,
		"noext":       false,
	}
	for name, want := range cases {
		if got := IsVideo(name); got != want {
			t.Errorf("IsVideo(%q) = %v, want %v", name, got, want)
		}
	}
}
