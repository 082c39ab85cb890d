// Package storetest provides in-memory implementations of the store
// interfaces for tests. Rows are copied in and out, so callers never hold
// live references into the store, same as scanning database rows. Listings
// come back in insertion order; SQL-level ordering is covered by the query
// builder tests. Photo create and delete keep the owner's counters in
// step, like the transactional store.
package storetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"photo-archive/internal/models"
	"photo-archive/internal/store"
)

// New returns a linked pair of in-memory stores sharing one lock.
// Deleting a user cascades to their photo rows, mirroring the database
// foreign key.
func New() (*Users, *Photos) {
	mu := &sync.Mutex{}
	photos := &Photos{mu: mu, byID: make(map[string]*models.Photo)}
	users := &Users{mu: mu, byID: make(map[string]*models.User), photos: photos}
	photos.users = users
	return users, photos
}

// Users is an in-memory store.Users.
type Users struct {
	mu     *sync.Mutex
	byID   map[string]*models.User
	order  []string
	photos *Photos
}

var _ store.Users = (*Users)(nil)

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Username == user.Username {
			return store.ErrDuplicateUsername
		}
		if u.Email != nil && user.Email != nil && *u.Email == *user.Email {
			return store.ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	s.byID[user.ID] = &cp
	s.order = append(s.order, user.ID)
	return nil
}

func (s *Users) ByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *Users) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	for _, u := range s.byID {
		if u.ID != user.ID && u.Email != nil && user.Email != nil && *u.Email == *user.Email {
			return store.ErrDuplicateEmail
		}
	}
	stored.DisplayName = user.DisplayName
	stored.Email = user.Email
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Users) SetAvatarPath(_ context.Context, id string, path *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.AvatarPath = path
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.byID, id)
	for i, uid := range s.order {
		if uid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.photos.deleteByUser(id)
	return nil
}

func (s *Users) List(_ context.Context, opts store.UserListOptions) ([]*models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.User
	needle := strings.ToLower(opts.Search)
	for _, id := range s.order {
		u := s.byID[id]
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Username), needle) &&
			!strings.Contains(strings.ToLower(u.DisplayName), needle) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}
	total := len(matched)
	return pageOf(matched, opts.Limit, opts.Offset), total, nil
}

// Photos is an in-memory store.Photos. CreateErr, when set, makes Create
// fail, standing in for a transaction that cannot commit.
type Photos struct {
	mu    *sync.Mutex
	byID  map[string]*models.Photo
	order []string
	users *Users

	CreateErr error
}

var _ store.Photos = (*Photos)(nil)

func (s *Photos) Create(_ context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	owner, ok := s.users.byID[photo.UserID]
	if !ok {
		return store.ErrUserNotFound
	}

	now := time.Now().UTC()
	photo.CreatedAt = now
	photo.UpdatedAt = now

	cp := *photo
	s.byID[photo.ID] = &cp
	s.order = append(s.order, photo.ID)

	uploaded := photo.UploadDate
	owner.PhotoCount++
	owner.TotalStorageBytes += photo.FileSize
	owner.LastUploadAt = &uploaded
	owner.UpdatedAt = now
	return nil
}

func (s *Photos) ByID(_ context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, ok := s.byID[id]
	if !ok {
		return nil, store.ErrPhotoNotFound
	}
	cp := *photo
	return &cp, nil
}

func (s *Photos) UpdateLocation(_ context.Context, id string, lat, lon float64) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, ok := s.byID[id]
	if !ok {
		return nil, store.ErrPhotoNotFound
	}
	photo.Latitude = lat
	photo.Longitude = lon
	photo.UpdatedAt = time.Now().UTC()

	cp := *photo
	return &cp, nil
}

func (s *Photos) Delete(_ context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, ok := s.byID[id]
	if !ok {
		return nil, store.ErrPhotoNotFound
	}
	s.remove(id)

	if owner, ok := s.users.byID[photo.UserID]; ok {
		owner.PhotoCount--
		owner.TotalStorageBytes -= photo.FileSize
		owner.UpdatedAt = time.Now().UTC()
	}
	return photo, nil
}

func (s *Photos) List(_ context.Context, opts store.PhotoListOptions) ([]*models.Photo, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.Photo
	for _, id := range s.order {
		p := s.byID[id]
		if opts.UserID != "" && p.UserID != opts.UserID {
			continue
		}
		if b := opts.Bounds; b != nil {
			if p.Latitude < b.South || p.Latitude > b.North ||
				p.Longitude < b.West || p.Longitude > b.East {
				continue
			}
		}
		cp := *p
		matched = append(matched, &cp)
	}
	total := len(matched)
	return pageOf(matched, opts.Limit, opts.Offset), total, nil
}

func (s *Photos) PathsByUser(_ context.Context, userID string) ([]store.MediaPaths, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []store.MediaPaths
	for _, id := range s.order {
		p := s.byID[id]
		if p.UserID == userID {
			paths = append(paths, store.MediaPaths{
				StoragePath:   p.StoragePath,
				ThumbnailPath: p.ThumbnailPath,
			})
		}
	}
	return paths, nil
}

// deleteByUser expects s.mu held. The owner row is already gone, so no
// counters to reverse.
func (s *Photos) deleteByUser(userID string) {
	for _, id := range append([]string(nil), s.order...) {
		if s.byID[id] != nil && s.byID[id].UserID == userID {
			s.remove(id)
		}
	}
}

// remove expects s.mu held.
func (s *Photos) remove(id string) {
	delete(s.byID, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func pageOf[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
