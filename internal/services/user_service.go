package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"photo-archive/internal/config"
	"photo-archive/internal/models"
	"photo-archive/internal/storage"
	"photo-archive/internal/store"
)

// Avatars accept still images only.
var avatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UserService manages accounts, their avatars, and the file cleanup that
// has to accompany account deletion.
type UserService struct {
	users  store.Users
	photos store.Photos
	media  *storage.MediaStore
	cfg    *config.Config
}

func NewUserService(users store.Users, photos store.Photos, media *storage.MediaStore, cfg *config.Config) *UserService {
	return &UserService{users: users, photos: photos, media: media, cfg: cfg}
}

func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 || len(username) > 100 {
		return nil, validationf("username must be 3-100 characters")
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" || len(displayName) > 255 {
		return nil, validationf("display_name must be 1-255 characters")
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		DisplayName: displayName,
		Email:       email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.ByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, opts store.UserListOptions) ([]*models.User, int, error) {
	return s.users.List(ctx, opts)
}

// Update applies the non-nil fields of req to the user.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || len(name) > 255 {
			return nil, validationf("display_name must be 1-255 characters")
		}
		user.DisplayName = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user's media files, their avatar, and finally the user
// row; photo rows go with it via the foreign key. The foreign key only
// cleans up rows, so the files are enumerated and removed here first.
// Returns the deleted user and the number of photos that went with it.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, int, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	paths, err := s.photos.PathsByUser(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range paths {
		s.media.Remove(p.StoragePath)
		if p.ThumbnailPath != nil {
			s.media.Remove(*p.ThumbnailPath)
		}
	}
	if user.AvatarPath != nil {
		s.media.Remove(*user.AvatarPath)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return nil, 0, err
	}

	slog.Info("user deleted", "user_id", id, "username", user.Username, "photos_deleted", len(paths))
	return user, len(paths), nil
}

// SetAvatar validates and stores a user's avatar, replacing any previous
// one. Like photo uploads, the file is staged and only promoted once the
// row points at it.
func (s *UserService) SetAvatar(ctx context.Context, id, filename string, content []byte) (*models.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExtensions[ext] {
		return nil, validationf("Invalid avatar type %q. Allowed: .jpg, .jpeg, .png, .webp", ext)
	}
	if int64(len(content)) > s.cfg.MaxImageSize {
		return nil, validationf("File too large. Maximum size for images: %dMB", s.cfg.MaxImageSize/(1<<20))
	}

	path := s.media.AvatarPath(id, ext)
	if err := s.media.Stage(path, content); err != nil {
		return nil, fmt.Errorf("stage avatar: %w", err)
	}
	if err := s.users.SetAvatarPath(ctx, id, &path); err != nil {
		s.media.Discard(path)
		return nil, err
	}
	if err := s.media.Promote(path); err != nil {
		return nil, fmt.Errorf("promote avatar: %w", err)
	}

	// A previous avatar under a different extension is now orphaned.
	if user.AvatarPath != nil && *user.AvatarPath != path {
		s.media.Remove(*user.AvatarPath)
	}

	user.AvatarPath = &path
	slog.Info("avatar updated", "user_id", id)
	return user, nil
}

// DeleteAvatar removes a user's avatar file and clears the reference.
func (s *UserService) DeleteAvatar(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.AvatarPath == nil {
		return user, nil
	}

	s.media.Remove(*user.AvatarPath)
	if err := s.users.SetAvatarPath(ctx, id, nil); err != nil {
		return nil, err
	}

	user.AvatarPath = nil
	return user, nil
}

// normalizeEmail trims and validates an optional email address. An empty
// or nil value normalizes to nil.
func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	e := strings.TrimSpace(*email)
	if e == "" {
		return nil, nil
	}
	if len(e) > 254 {
		return nil, validationf("email address is too long")
	}
	if _, err := mail.ParseAddress(e); err != nil {
		return nil, validationf("invalid email address format")
	}
	return &e, nil
}
