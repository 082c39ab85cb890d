package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photo-archive/internal/models"
)

const userColumns = `id, username, display_name, email, avatar_path, photo_count, total_storage_bytes, metadata, created_at, updated_at, last_upload_at`

type pgUsers struct {
	pool *pgxpool.Pool
}

// NewUsers returns the PostgreSQL-backed Users store.
func NewUsers(pool *pgxpool.Pool) Users {
	return &pgUsers{pool: pool}
}

func (s *pgUsers) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, display_name, email, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING photo_count, total_storage_bytes, created_at, updated_at`
	err := s.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.DisplayName, user.Email, metadataParam(user.Metadata)).
		Scan(&user.PhotoCount, &user.TotalStorageBytes, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return uniqueViolation(err)
	}
	return nil
}

func (s *pgUsers) ByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *pgUsers) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET display_name = $1, email = $2, updated_at = now()
		WHERE id = $3`
	tag, err := s.pool.Exec(ctx, query, user.DisplayName, user.Email, user.ID)
	if err != nil {
		return uniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *pgUsers) SetAvatarPath(ctx context.Context, id string, path *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET avatar_path = $1, updated_at = now() WHERE id = $2`, path, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *pgUsers) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *pgUsers) List(ctx context.Context, opts UserListOptions) ([]*models.User, int, error) {
	where, page, args := buildUserListQuery(opts)

	var total int
	countArgs := args[:len(args)-2]
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+where+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

var userSortColumns = map[string]string{
	"created_at":  "created_at",
	"photo_count": "photo_count",
	"last_upload": "last_upload_at",
	"username":    "username",
}

// buildUserListQuery assembles the WHERE clause and the ORDER BY/LIMIT
// tail for a user listing. Sort keys outside the whitelist fall back to
// last_upload_at. The last two args are always limit and offset.
func buildUserListQuery(opts UserListOptions) (where, page string, args []any) {
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = ` WHERE username ILIKE $1 OR display_name ILIKE $1`
	}

	col, ok := userSortColumns[opts.Sort]
	if !ok {
		col = "last_upload_at"
	}

	page = fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, col, orderDir(opts.Order), len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)
	return where, page, args
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.AvatarPath,
		&u.PhotoCount, &u.TotalStorageBytes, &u.Metadata, &u.CreatedAt, &u.UpdatedAt, &u.LastUploadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
