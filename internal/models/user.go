package models

import (
	"fmt"
	"time"
)

// User represents an account that owns uploaded photos. PhotoCount,
// TotalStorageBytes and LastUploadAt are denormalized counters maintained
// alongside photo writes.
type User struct {
	ID                string         `json:"id"`
	Username          string         `json:"username"`
	DisplayName       string         `json:"display_name"`
	Email             *string        `json:"email"`
	AvatarPath        *string        `json:"-"`
	PhotoCount        int            `json:"photo_count"`
	TotalStorageBytes int64          `json:"total_storage_bytes"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"-"`
	LastUploadAt      *time.Time     `json:"last_upload_at"`
}

// UserDetail is the API representation of a user.
type UserDetail struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	DisplayName       string     `json:"display_name"`
	Email             *string    `json:"email"`
	AvatarURL         *string    `json:"avatar_url"`
	PhotoCount        int        `json:"photo_count"`
	TotalStorageBytes int64      `json:"total_storage_bytes"`
	LastUploadAt      *time.Time `json:"last_upload_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Detail converts the user to its API shape. The avatar URL is derived
// from the API prefix rather than exposing the storage path.
func (u *User) Detail(prefix string) UserDetail {
	d := UserDetail{
		ID:                u.ID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		Email:             u.Email,
		PhotoCount:        u.PhotoCount,
		TotalStorageBytes: u.TotalStorageBytes,
		LastUploadAt:      u.LastUploadAt,
		CreatedAt:         u.CreatedAt,
	}
	if u.AvatarPath != nil && *u.AvatarPath != "" {
		url := fmt.Sprintf("%s/users/%s/avatar", prefix, u.ID)
		d.AvatarURL = &url
	}
	return d
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Email       *string `json:"email"`
}

// UpdateUserRequest is the body of PATCH /users/:id. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
}

// UserListResponse wraps a page of users with pagination echo fields.
type UserListResponse struct {
	Users  []UserDetail `json:"users"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// DeleteUserResponse confirms a user deletion and reports how many owned
// photos went with it.
type DeleteUserResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PhotosDeleted int    `json:"photos_deleted"`
}
