package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"photo-archive/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// UserListOptions control filtering, ordering and pagination of user
// listings. Limit and Offset are assumed pre-clamped by the caller.
type UserListOptions struct {
	Search string
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// PhotoListOptions control filtering, ordering and pagination of photo
// listings. An empty UserID means photos of all users; a nil Bounds means
// no geographic filter.
type PhotoListOptions struct {
	UserID string
	Bounds *Bounds
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// MediaPaths identifies the files belonging to one photo row.
type MediaPaths struct {
	StoragePath   string
	ThumbnailPath *string
}

// Users persists user accounts.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetAvatarPath(ctx context.Context, id string, path *string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts UserListOptions) ([]*models.User, int, error)
}

// Photos persists photo metadata. Create and Delete also move the owner's
// denormalized counters within the same transaction.
type Photos interface {
	Create(ctx context.Context, photo *models.Photo) error
	ByID(ctx context.Context, id string) (*models.Photo, error)
	UpdateLocation(ctx context.Context, id string, lat, lon float64) (*models.Photo, error)
	Delete(ctx context.Context, id string) (*models.Photo, error)
	List(ctx context.Context, opts PhotoListOptions) ([]*models.Photo, int, error)
	PathsByUser(ctx context.Context, userID string) ([]MediaPaths, error)
}

// metadataParam keeps absent metadata as SQL NULL instead of a JSON null.
func metadataParam(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// uniqueViolation maps a unique-constraint error to the matching sentinel,
// or returns err unchanged.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return ErrDuplicateUsername
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrDuplicateEmail
		}
	}
	return err
}

// orderDir normalizes a sort direction, defaulting to descending.
func orderDir(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}
