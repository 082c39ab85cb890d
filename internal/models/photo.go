package models

import (
	"fmt"
	"time"
)

// Photo represents an uploaded image or video pinned to a geographic
// location. StoragePath and ThumbnailPath are server-local paths and never
// leave the API boundary.
type Photo struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Filename      string         `json:"filename"`
	StoragePath   string         `json:"-"`
	ThumbnailPath *string        `json:"-"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	FileSize      int64          `json:"file_size"`
	MimeType      string         `json:"mime_type"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	UploadDate    time.Time      `json:"upload_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"-"`
}

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PhotoDetail is the API representation of a photo. Binary content is
// reachable through the derived URLs, not inline.
type PhotoDetail struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Filename     string         `json:"filename"`
	Location     Location       `json:"location"`
	UploadDate   time.Time      `json:"upload_date"`
	FileSize     int64          `json:"file_size"`
	MimeType     string         `json:"mime_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ImageURL     string         `json:"image_url"`
	ThumbnailURL *string        `json:"thumbnail_url"`
}

// Detail converts the photo to its API shape.
func (p *Photo) Detail(prefix string) PhotoDetail {
	d := PhotoDetail{
		ID:         p.ID,
		UserID:     p.UserID,
		Filename:   p.Filename,
		Location:   Location{Latitude: p.Latitude, Longitude: p.Longitude},
		UploadDate: p.UploadDate,
		FileSize:   p.FileSize,
		MimeType:   p.MimeType,
		Metadata:   p.Metadata,
		ImageURL:   fmt.Sprintf("%s/photos/%s/image", prefix, p.ID),
	}
	if p.ThumbnailPath != nil {
		url := fmt.Sprintf("%s/photos/%s/thumbnail", prefix, p.ID)
		d.ThumbnailURL = &url
	}
	return d
}

// UploadResponse is the reduced shape returned right after an upload.
func (p *Photo) UploadResponse(prefix string) UploadPhotoResponse {
	d := p.Detail(prefix)
	return UploadPhotoResponse{
		ID:           d.ID,
		Filename:     d.Filename,
		Location:     d.Location,
		UploadDate:   d.UploadDate,
		ImageURL:     d.ImageURL,
		ThumbnailURL: d.ThumbnailURL,
	}
}

// UploadPhotoResponse confirms a successful upload.
type UploadPhotoResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Location     Location  `json:"location"`
	UploadDate   time.Time `json:"upload_date"`
	ImageURL     string    `json:"image_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
}

// UpdateLocationRequest is the body of PATCH /photos/:id/location. Both
// coordinates are required; pointers distinguish absent fields from zero.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PhotoListResponse wraps a page of photos with pagination echo fields.
type PhotoListResponse struct {
	Photos []PhotoDetail `json:"photos"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// DeletePhotoResponse confirms a photo deletion.
type DeletePhotoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse reports service and database status.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}
