package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPhotoDetailURLs(t *testing.T) {
	photo := &Photo{
		ID:          "p1",
		UserID:      "u1",
		Filename:    "trip.jpg",
		StoragePath: "/var/photos/p1.jpg",
		Latitude:    48.1,
		Longitude:   11.6,
		FileSize:    1234,
		MimeType:    "image/jpeg",
		UploadDate:  time.Now(),
	}

	d := photo.Detail("/api/v1")
	if d.ImageURL != "/api/v1/photos/p1/image" {
		t.Errorf("image URL = %q", d.ImageURL)
	}
	if d.ThumbnailURL != nil {
		t.Error("thumbnail URL should be nil without a thumbnail path")
	}
	if d.Location.Latitude != 48.1 || d.Location.Longitude != 11.6 {
		t.Errorf("location = %+v", d.Location)
	}

	thumb := "/var/thumbs/p1_thumb.jpg"
	photo.ThumbnailPath = &thumb
	d = photo.Detail("/api/v1")
	if d.ThumbnailURL == nil || *d.ThumbnailURL != "/api/v1/photos/p1/thumbnail" {
		t.Errorf("thumbnail URL = %v", d.ThumbnailURL)
	}
}

func TestPhotoJSONHidesStoragePaths(t *testing.T) {
	thumb := "/var/thumbs/p1_thumb.jpg"
	photo := &Photo{
		ID:            "p1",
		StoragePath:   "/var/photos/p1.jpg",
		ThumbnailPath: &thumb,
	}

	raw, err := json.Marshal(photo)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "/var/") {
		t.Errorf("storage paths leaked into JSON: %s", raw)
	}
}

func TestUserDetailAvatarURL(t *testing.T) {
	user := &User{ID: "u1", Username: "alice", DisplayName: "Alice"}

	d := user.Detail("/api/v1")
	if d.AvatarURL != nil {
		t.Error("avatar URL should be nil without an avatar path")
	}

	path := "/var/avatars/u1.jpg"
	user.AvatarPath = &path
	d = user.Detail("/api/v1")
	if d.AvatarURL == nil || *d.AvatarURL != "/api/v1/users/u1/avatar" {
		t.Errorf("avatar URL = %v", d.AvatarURL)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "/var/avatars") {
		t.Errorf("avatar path leaked into JSON: %s", raw)
	}
}

func TestUploadResponseSubset(t *testing.T) {
	photo := &Photo{
		ID:         "p2",
		Filename:   "clip.mp4",
		Latitude:   1,
		Longitude:  2,
		MimeType:   "video/mp4",
		UploadDate: time.Now(),
	}

	r := photo.UploadResponse("/api/v1")
	if r.ID != "p2" || r.Filename != "clip.mp4" {
		t.Errorf("response = %+v", r)
	}
	if r.ImageURL != "/api/v1/photos/p2/image" {
		t.Errorf("image URL = %q", r.ImageURL)
	}
	if r.ThumbnailURL != nil {
		t.Error("thumbnail URL should be nil for a photo without one")
	}
}
