package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"photo-archive/internal/models"
	"photo-archive/internal/services"
	"photo-archive/internal/storage"
	"photo-archive/internal/store"
)

// ListUsersHandler returns a searched, sorted page of users.
func ListUsersHandler(userService *services.UserService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts := store.UserListOptions{
			Search: c.Query("search"),
			Sort:   c.Query("sort", "last_upload"),
			Order:  c.Query("order", "desc"),
			Limit:  clamp(c.QueryInt("limit", 50), 1, 100),
			Offset: max(c.QueryInt("offset", 0), 0),
		}

		users, total, err := userService.List(c.Context(), opts)
		if err != nil {
			return respondError(c, err, "Failed to fetch users")
		}

		details := make([]models.UserDetail, 0, len(users))
		for _, u := range users {
			details = append(details, u.Detail(prefix))
		}

		return c.JSON(models.UserListResponse{
			Users:  details,
			Total:  total,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		})
	}
}

// CreateUserHandler registers a new account.
func CreateUserHandler(userService *services.UserService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		user, err := userService.Create(c.Context(), req)
		if err != nil {
			return respondError(c, err, "Failed to create user")
		}
		return c.Status(http.StatusCreated).JSON(user.Detail(prefix))
	}
}

// UserDetailHandler returns one user's profile.
func UserDetailHandler(userService *services.UserService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userService.ByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to fetch user")
		}
		return c.JSON(user.Detail(prefix))
	}
}

// UpdateUserHandler updates display name and email.
func UpdateUserHandler(userService *services.UserService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UpdateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		user, err := userService.Update(c.Context(), c.Params("id"), req)
		if err != nil {
			return respondError(c, err, "Failed to update user")
		}
		return c.JSON(user.Detail(prefix))
	}
}

// DeleteUserHandler removes an account, its photos and all their files.
func DeleteUserHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, photosDeleted, err := userService.Delete(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to delete user")
		}
		return c.JSON(models.DeleteUserResponse{
			Success:       true,
			Message:       fmt.Sprintf("User deleted: %s", user.Username),
			PhotosDeleted: photosDeleted,
		})
	}
}

// UserPhotosHandler lists one user's photos with the shared photo listing
// parameters.
func UserPhotosHandler(photoService *services.PhotoService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := photoListOptions(c, c.Params("id"))
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

// UploadAvatarHandler sets a user's avatar from a multipart field named
// "avatar".
func UploadAvatarHandler(userService *services.UserService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}

		f, err := fileHeader.Open()
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to read file"})
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return respondError(c, err, "Failed to upload avatar")
		}

		user, err := userService.SetAvatar(c.Context(), c.Params("id"), fileHeader.Filename, content)
		if err != nil {
			return respondError(c, err, "Failed to upload avatar")
		}
		return c.JSON(user.Detail(prefix))
	}
}

// AvatarHandler streams a user's avatar image.
func AvatarHandler(userService *services.UserService, media *storage.MediaStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userService.ByID(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to fetch user")
		}

		if user.AvatarPath == nil || !media.Exists(*user.AvatarPath) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Avatar not found"})
		}
		return c.SendFile(*user.AvatarPath)
	}
}

// DeleteAvatarHandler removes a user's avatar.
func DeleteAvatarHandler(userService *services.UserService, prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userService.DeleteAvatar(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err, "Failed to delete avatar")
		}
		return c.JSON(user.Detail(prefix))
	}
}
