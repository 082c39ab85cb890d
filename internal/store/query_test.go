package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestBuildUserListQuery(t *testing.T) {
	where, page, args := buildUserListQuery(UserListOptions{Limit: 50, Offset: 10})
	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if page != ` ORDER BY last_upload_at DESC LIMIT $1 OFFSET $2` {
		t.Errorf("page = %q", page)
	}
	if len(args) != 2 || args[0] != 50 || args[1] != 10 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUserListQuerySearch(t *testing.T) {
	where, page, args := buildUserListQuery(UserListOptions{
		Search: "bob", Sort: "username", Order: "asc", Limit: 20, Offset: 0,
	})
	if where != ` WHERE username ILIKE $1 OR display_name ILIKE $1` {
		t.Errorf("where = %q", where)
	}
	if page != ` ORDER BY username ASC LIMIT $2 OFFSET $3` {
		t.Errorf("page = %q", page)
	}
	if len(args) != 3 || args[0] != "%bob%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUserListQuerySortFallback(t *testing.T) {
	for _, sort := range []string{"", "nonsense", "created_at; DROP TABLE users"} {
		_, page, _ := buildUserListQuery(UserListOptions{Sort: sort, Limit: 1})
		if page != ` ORDER BY last_upload_at DESC LIMIT $1 OFFSET $2` {
			t.Errorf("sort %q: page = %q", sort, page)
		}
	}
}

func TestBuildPhotoListQuery(t *testing.T) {
	where, page, args := buildPhotoListQuery(PhotoListOptions{Limit: 100, Offset: 0})
	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if page != " ORDER BY upload_date DESC LIMIT $1 OFFSET $2" {
		t.Errorf("page = %q", page)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildPhotoListQueryUserAndBounds(t *testing.T) {
	bounds := &Bounds{North: 60, South: 50, East: 20, West: 10}
	where, page, args := buildPhotoListQuery(PhotoListOptions{
		UserID: "u1", Bounds: bounds, Sort: "file_size", Order: "asc", Limit: 25, Offset: 5,
	})

	wantWhere := " WHERE user_id = $1 AND latitude >= $2 AND latitude <= $3 AND longitude >= $4 AND longitude <= $5"
	if where != wantWhere {
		t.Errorf("where = %q, want %q", where, wantWhere)
	}
	if page != " ORDER BY file_size ASC LIMIT $6 OFFSET $7" {
		t.Errorf("page = %q", page)
	}

	want := []any{"u1", 50.0, 60.0, 10.0, 20.0, 25, 5}
	if len(args) != len(want) {
		t.Fatalf("args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestBuildPhotoListQuerySortFallback(t *testing.T) {
	_, page, _ := buildPhotoListQuery(PhotoListOptions{Sort: "filename", Limit: 1})
	if page != " ORDER BY upload_date DESC LIMIT $1 OFFSET $2" {
		t.Errorf("page = %q", page)
	}
}

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds("60.5, 50.1, 20.0, 10.9")
	if err != nil {
		t.Fatalf("ParseBounds: %v", err)
	}
	if b.North != 60.5 || b.South != 50.1 || b.East != 20.0 || b.West != 10.9 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestParseBoundsErrors(t *testing.T) {
	for _, s := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d", "1,2,3,east"} {
		if _, err := ParseBounds(s); err == nil {
			t.Errorf("ParseBounds(%q) should fail", s)
		}
	}
}

func TestOrderDir(t *testing.T) {
	if orderDir("asc") != "ASC" || orderDir("ASC") != "ASC" {
		t.Error("asc should normalize to ASC")
	}
	for _, s := range []string{"", "desc", "descending", "garbage"} {
		if orderDir(s) != "DESC" {
			t.Errorf("orderDir(%q) = %q, want DESC", s, orderDir(s))
		}
	}
}

func TestMetadataParam(t *testing.T) {
	if metadataParam(nil) != nil {
		t.Error("nil map should stay SQL NULL")
	}
	if metadataParam(map[string]any{}) != nil {
		t.Error("empty map should stay SQL NULL")
	}
	m := map[string]any{"camera_make": "Canon"}
	if got := metadataParam(m); got == nil {
		t.Error("populated map should pass through")
	}
}

func TestUniqueViolation(t *testing.T) {
	err := uniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("username constraint: got %v", err)
	}

	err = uniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("email constraint: got %v", err)
	}

	plain := errors.New("connection reset")
	if uniqueViolation(plain) != plain {
		t.Error("unrelated errors should pass through")
	}
}

func TestInsertErr(t *testing.T) {
	err := insertErr(&pgconn.PgError{Code: "23503", ConstraintName: "photos_user_id_fkey"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("fk violation: got %v", err)
	}

	plain := errors.New("boom")
	if insertErr(plain) != plain {
		t.Error("unrelated errors should pass through")
	}
}
