package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore manages the on-disk layout for originals, thumbnails and
// avatars. New files are written under a hidden staging name and renamed
// into place only after the database row referencing them is committed.
type MediaStore struct {
	photoDir  string
	thumbDir  string
	avatarDir string
}

// NewMediaStore creates the three media directories if needed.
func NewMediaStore(photoDir, thumbDir, avatarDir string) (*MediaStore, error) {
	for _, dir := range []string{photoDir, thumbDir, avatarDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create media directory %s: %w", dir, err)
		}
	}
	return &MediaStore{photoDir: photoDir, thumbDir: thumbDir, avatarDir: avatarDir}, nil
}

// PhotoPath is the final location of an original, named by photo ID with
// the upload's extension preserved.
func (m *MediaStore) PhotoPath(id, ext string) string {
	return filepath.Join(m.photoDir, id+ext)
}

// ThumbnailPath is the final location of a photo's JPEG thumbnail.
func (m *MediaStore) ThumbnailPath(id string) string {
	return filepath.Join(m.thumbDir, id+"_thumb.jpg")
}

// AvatarPath is the final location of a user's avatar.
func (m *MediaStore) AvatarPath(userID, ext string) string {
	return filepath.Join(m.avatarDir, userID+ext)
}

// StagePath is the hidden name a file occupies until it is promoted.
func StagePath(final string) string {
	dir, name := filepath.Split(final)
	return filepath.Join(dir, "."+name+".tmp")
}

// Stage writes content under the staging name for final.
func (m *MediaStore) Stage(final string, content []byte) error {
	return os.WriteFile(StagePath(final), content, 0644)
}

// Promote renames a staged file into its final place. The rename is atomic
// within the directory, so readers never observe partial content.
func (m *MediaStore) Promote(final string) error {
	return os.Rename(StagePath(final), final)
}

// Discard removes a staged file. A file that was never written or already
// promoted is not an error.
func (m *MediaStore) Discard(final string) {
	if err := os.Remove(StagePath(final)); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove staged file", "path", StagePath(final), "error", err)
	}
}

// Remove deletes a final file, tolerating its absence.
func (m *MediaStore) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove media file", "path", path, "error", err)
	}
}

// Exists reports whether path currently exists on disk.
func (m *MediaStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Video extensions recognized for thumbnail routing.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// IsVideo reports whether the filename carries a video extension.
func IsVideo(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}
