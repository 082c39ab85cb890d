package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"photo-archive/internal/config"
	"photo-archive/internal/models"
	"photo-archive/internal/storage"
	"photo-archive/internal/store"
)

// PhotoService coordinates the upload pipeline and photo lifecycle:
// validation, staged file writes, thumbnail derivation, the metadata row,
// and cleanup when any of it fails.
type PhotoService struct {
	users  store.Users
	photos store.Photos
	media  *storage.MediaStore
	thumbs *storage.Thumbnailer
	cfg    *config.Config
}

func NewPhotoService(users store.Users, photos store.Photos, media *storage.MediaStore, thumbs *storage.Thumbnailer, cfg *config.Config) *PhotoService {
	return &PhotoService{users: users, photos: photos, media: media, thumbs: thumbs, cfg: cfg}
}

// UploadInput carries one multipart upload through the pipeline.
type UploadInput struct {
	UserID    string
	Filename  string
	Content   []byte
	MimeType  string
	Latitude  float64
	Longitude float64
}

// Upload validates the input, stages the original and its thumbnail on
// disk, commits the metadata row and then promotes the staged files. A
// rejected upload leaves no trace in storage or the database.
func (s *PhotoService) Upload(ctx context.Context, in UploadInput) (*models.Photo, error) {
	if _, err := s.users.ByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !s.cfg.AllowedExtensions[ext] {
		return nil, validationf("Invalid file type %q. Allowed: %s", ext, s.cfg.ExtensionList())
	}

	if err := ValidateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	isVideo := storage.IsVideo(in.Filename)
	maxSize, kind := s.cfg.MaxImageSize, "images"
	if isVideo {
		maxSize, kind = s.cfg.MaxVideoSize, "videos"
	}
	if int64(len(in.Content)) > maxSize {
		return nil, validationf("File too large. Maximum size for %s: %dMB", kind, maxSize/(1<<20))
	}

	photoID := uuid.New().String()
	storagePath := s.media.PhotoPath(photoID, ext)
	thumbPath := s.media.ThumbnailPath(photoID)

	if err := s.media.Stage(storagePath, in.Content); err != nil {
		return nil, fmt.Errorf("stage original: %w", err)
	}
	staged := []string{storagePath}

	// Thumbnail derivation is best-effort: failure only means the photo
	// is stored without one.
	var thumbnailPath *string
	var thumbErr error
	if isVideo {
		thumbErr = s.thumbs.FromVideo(ctx, storage.StagePath(storagePath), storage.StagePath(thumbPath))
	} else {
		thumbErr = s.thumbs.FromImage(in.Content, storage.StagePath(thumbPath))
	}
	if thumbErr != nil {
		slog.Warn("thumbnail derivation failed", "photo_id", photoID, "error", thumbErr)
		s.media.Discard(thumbPath)
	} else {
		thumbnailPath = &thumbPath
		staged = append(staged, thumbPath)
	}

	var meta map[string]any
	if !isVideo {
		meta = storage.ExtractEXIF(in.Content)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	photo := &models.Photo{
		ID:            photoID,
		UserID:        in.UserID,
		Filename:      in.Filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		FileSize:      int64(len(in.Content)),
		MimeType:      mimeType,
		Metadata:      meta,
		UploadDate:    time.Now().UTC(),
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		for _, p := range staged {
			s.media.Discard(p)
		}
		return nil, fmt.Errorf("create photo record: %w", err)
	}

	// The committed row references the final paths; move the staged files
	// into place. On failure the row is rolled back and every file, staged
	// or already promoted, is removed.
	for _, p := range staged {
		if err := s.media.Promote(p); err != nil {
			if _, delErr := s.photos.Delete(ctx, photoID); delErr != nil {
				slog.Error("failed to remove photo row after promote failure",
					"photo_id", photoID, "error", delErr)
			}
			for _, q := range staged {
				s.media.Remove(q)
				s.media.Discard(q)
			}
			return nil, fmt.Errorf("promote media files: %w", err)
		}
	}

	slog.Info("photo uploaded", "photo_id", photoID, "user_id", in.UserID,
		"size", photo.FileSize, "video", isVideo, "thumbnail", thumbnailPath != nil)
	return photo, nil
}

// ByID fetches a single photo.
func (s *PhotoService) ByID(ctx context.Context, id string) (*models.Photo, error) {
	return s.photos.ByID(ctx, id)
}

// List returns a page of photos plus the total count for the filter. When
// the listing is scoped to a user, that user must exist.
func (s *PhotoService) List(ctx context.Context, opts store.PhotoListOptions) ([]*models.Photo, int, error) {
	if opts.UserID != "" {
		if _, err := s.users.ByID(ctx, opts.UserID); err != nil {
			return nil, 0, err
		}
	}
	return s.photos.List(ctx, opts)
}

// UpdateLocation moves a photo to new coordinates.
func (s *PhotoService) UpdateLocation(ctx context.Context, id string, lat, lon float64) (*models.Photo, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	photo, err := s.photos.UpdateLocation(ctx, id, lat, lon)
	if err != nil {
		return nil, err
	}

	slog.Info("photo location updated", "photo_id", id, "latitude", lat, "longitude", lon)
	return photo, nil
}

// Delete removes a photo's files and then its row. Files go first: a row
// whose files are already gone still answers 404 on the binary endpoints,
// so a failure between the two steps stays visible instead of leaking disk.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	photo, err := s.photos.ByID(ctx, id)
	if err != nil {
		return err
	}

	s.media.Remove(photo.StoragePath)
	if photo.ThumbnailPath != nil {
		s.media.Remove(*photo.ThumbnailPath)
	}

	if _, err := s.photos.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("photo deleted", "photo_id", id, "user_id", photo.UserID)
	return nil
}
