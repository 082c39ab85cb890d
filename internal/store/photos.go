package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"photo-archive/internal/models"
)

const photoColumns = `id, user_id, filename, storage_path, thumbnail_path, latitude, longitude, file_size, mime_type, metadata, upload_date, created_at, updated_at`

type pgPhotos struct {
	pool *pgxpool.Pool
}

// NewPhotos returns the PostgreSQL-backed Photos store.
func NewPhotos(pool *pgxpool.Pool) Photos {
	return &pgPhotos{pool: pool}
}

// Create inserts the photo row and bumps the owner's counters in one
// transaction, so the counters cannot drift from the actual rows.
func (s *pgPhotos) Create(ctx context.Context, photo *models.Photo) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO photos (id, user_id, filename, storage_path, thumbnail_path,
			latitude, longitude, file_size, mime_type, metadata, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		photo.ID, photo.UserID, photo.Filename, photo.StoragePath, photo.ThumbnailPath,
		photo.Latitude, photo.Longitude, photo.FileSize, photo.MimeType,
		metadataParam(photo.Metadata), photo.UploadDate).
		Scan(&photo.CreatedAt, &photo.UpdatedAt)
	if err != nil {
		return insertErr(err)
	}

	update := `
		UPDATE users
		SET photo_count = photo_count + 1,
		    total_storage_bytes = total_storage_bytes + $1,
		    last_upload_at = $2,
		    updated_at = now()
		WHERE id = $3`
	if _, err := tx.Exec(ctx, update, photo.FileSize, photo.UploadDate, photo.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *pgPhotos) ByID(ctx context.Context, id string) (*models.Photo, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	return scanPhoto(row)
}

func (s *pgPhotos) UpdateLocation(ctx context.Context, id string, lat, lon float64) (*models.Photo, error) {
	query := `
		UPDATE photos
		SET latitude = $1, longitude = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + photoColumns
	row := s.pool.QueryRow(ctx, query, lat, lon, id)
	return scanPhoto(row)
}

// Delete removes the photo row and reverses the owner's counters in one
// transaction. The removed row is returned so callers can clean up files.
func (s *pgPhotos) Delete(ctx context.Context, id string) (*models.Photo, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `DELETE FROM photos WHERE id = $1 RETURNING `+photoColumns, id)
	photo, err := scanPhoto(row)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE users
		SET photo_count = photo_count - 1,
		    total_storage_bytes = total_storage_bytes - $1,
		    updated_at = now()
		WHERE id = $2`
	if _, err := tx.Exec(ctx, update, photo.FileSize, photo.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *pgPhotos) List(ctx context.Context, opts PhotoListOptions) ([]*models.Photo, int, error) {
	where, page, args := buildPhotoListQuery(opts)

	var total int
	countArgs := args[:len(args)-2]
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM photos`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+photoColumns+` FROM photos`+where+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

func (s *pgPhotos) PathsByUser(ctx context.Context, userID string) ([]MediaPaths, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT storage_path, thumbnail_path FROM photos WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []MediaPaths
	for rows.Next() {
		var p MediaPaths
		if err := rows.Scan(&p.StoragePath, &p.ThumbnailPath); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

var photoSortColumns = map[string]string{
	"upload_date": "upload_date",
	"file_size":   "file_size",
}

// buildPhotoListQuery assembles the WHERE clause and the ORDER BY/LIMIT
// tail for a photo listing. Sort keys outside the whitelist fall back to
// upload_date. The last two args are always limit and offset.
func buildPhotoListQuery(opts PhotoListOptions) (where, page string, args []any) {
	var conds []string

	if opts.UserID != "" {
		args = append(args, opts.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if b := opts.Bounds; b != nil {
		args = append(args, b.South, b.North, b.West, b.East)
		conds = append(conds,
			fmt.Sprintf("latitude >= $%d", len(args)-3),
			fmt.Sprintf("latitude <= $%d", len(args)-2),
			fmt.Sprintf("longitude >= $%d", len(args)-1),
			fmt.Sprintf("longitude <= $%d", len(args)))
	}

	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	col, ok := photoSortColumns[opts.Sort]
	if !ok {
		col = "upload_date"
	}

	page = fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", col, orderDir(opts.Order), len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)
	return where, page, args
}

// Bounds is a geographic bounding box filter.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// ParseBounds parses a "north,south,east,west" string of four floats.
func ParseBounds(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bounds needs four comma-separated values, got %d", len(parts))
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bounds value %q", strings.TrimSpace(p))
		}
		vals[i] = v
	}
	return &Bounds{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}, nil
}

// insertErr maps a foreign key violation on photo insert to the user
// sentinel; the referenced user can vanish between validation and commit.
func insertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrUserNotFound
	}
	return err
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var p models.Photo
	err := row.Scan(&p.ID, &p.UserID, &p.Filename, &p.StoragePath, &p.ThumbnailPath,
		&p.Latitude, &p.Longitude, &p.FileSize, &p.MimeType, &p.Metadata,
		&p.UploadDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
