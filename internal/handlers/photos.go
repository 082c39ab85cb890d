package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"photo-archive/internal/models"
	"photo-archive/internal/services"
	"photo-archive/internal/storage"
	"photo-archive/internal/store"
)

// UploadPhotoHandler accepts a multipart upload (file, user_id, latitude,
// longitude) and runs it through the upload pipeline.
func UploadPhotoHandler(photoService *services.PhotoService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
		}

		userID := c.FormValue("user_id")
		if userID == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		lat, err := strconv.ParseFloat(c.FormValue("latitude"), 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "latitude must be a number"})
		}
		lon, err := strconv.ParseFloat(c.FormValue("longitude"), 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "longitude must be a number"})
		}

		f, err := fileHeader.Open()
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to read file"})
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return respondError(c, err, "Failed to upload photo")
		}

		photo, err := photoService.Upload(c.Context(), services.UploadInput{
			UserID:    userID,
			Filename:  fileHeader.Filename,
			Content:   content,
			MimeType:  fileHeader.Header.Get("Content-Type"),
			Latitude:  lat,
			Longitude: lon,
		})
		if err != nil {
			return respondError(c, err, "Failed to upload photo")
		}

		return c.Status(http.StatusCreated).JSON(photo.UploadResponse(prefix))
	}
}

// ListPhotosHandler returns a filtered, sorted page of all photos.
func ListPhotosHandler(photoService *services.PhotoService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := photoListOptions(c, "")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		photos, total, err := photoService.List(c.Context(), opts)
		if err != nil {
			return respondError(c, err, "Failed to fetch photos")
		}

		return c.JSON(models.PhotoListResponse{
			Photos: photoDetails(photos, prefix),
			Total:  total,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		})
	}
}

// PhotoDetailHandler returns one photo's metadata.
func PhotoDetailHandler(photoService *services.PhotoService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photo, err := photoService.ByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to fetch photo")
		}
		return c.JSON(photo.Detail(prefix))
	}
}

// PhotoImageHandler streams the original media file.
func PhotoImageHandler(photoService *services.PhotoService, media *storage.MediaStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photo, err := photoService.ByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to fetch photo")
		}

		// Existence is checked per request: a row whose file is gone
		// answers 404 rather than 500.
		if !media.Exists(photo.StoragePath) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Image file not found"})
		}

		if err := c.SendFile(photo.StoragePath); err != nil {
			return respondError(c, err, "Failed to send file")
		}
		// SendFile guesses the type from the extension; the stored MIME
		// type wins.
		c.Set(fiber.HeaderContentType, photo.MimeType)
		return nil
	}
}

// PhotoThumbnailHandler streams the JPEG thumbnail.
func PhotoThumbnailHandler(photoService *services.PhotoService, media *storage.MediaStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photo, err := photoService.ByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to fetch photo")
		}

		if photo.ThumbnailPath == nil || !media.Exists(*photo.ThumbnailPath) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Thumbnail not found"})
		}

		return c.SendFile(*photo.ThumbnailPath)
	}
}

// UpdatePhotoLocationHandler moves a photo to new coordinates.
func UpdatePhotoLocationHandler(photoService *services.PhotoService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UpdateLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.Latitude == nil || req.Longitude == nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "latitude and longitude are required"})
		}

		photo, err := photoService.UpdateLocation(c.Context(), c.Params("id"), *req.Latitude, *req.Longitude)
		if err != nil {
			return respondError(c, err, "Failed to update photo location")
		}
		return c.JSON(photo.Detail(prefix))
	}
}

// DeletePhotoHandler removes a photo, files first, then the row.
func DeletePhotoHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := photoService.Delete(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err, "Failed to delete photo")
		}
		return c.JSON(models.DeletePhotoResponse{Success: true, Message: "Photo deleted successfully"})
	}
}

// photoListOptions parses the shared photo listing query parameters.
// Pagination is clamped rather than rejected; a malformed bounds string is
// the one listing input that earns a 400.
func photoListOptions(c *fiber.Ctx, userID string) (store.PhotoListOptions, error) {
	opts := store.PhotoListOptions{
		UserID: userID,
		Sort:   c.Query("sort", "upload_date"),
		Order:  c.Query("order", "desc"),
		Limit:  clamp(c.QueryInt("limit", 100), 1, 500),
		Offset: max(c.QueryInt("offset", 0), 0),
	}

	if bounds := c.Query("bounds"); bounds != "" {
		b, err := store.ParseBounds(bounds)
		if err != nil {
			return opts, errInvalidBounds
		}
		opts.Bounds = b
	}
	return opts, nil
}

func photoDetails(photos []*models.Photo, prefix string) []models.PhotoDetail {
	details := make([]models.PhotoDetail, 0, len(photos))
	for _, p := range photos {
		details = append(details, p.Detail(prefix))
	}
	return details
}
