package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"photo-archive/internal/config"
	"photo-archive/internal/db"
	"photo-archive/internal/handlers"
	"photo-archive/internal/logger"
	"photo-archive/internal/services"
	"photo-archive/internal/storage"
	"photo-archive/internal/store"
)

// Run loads configuration, connects the backing services, starts the HTTP
// server and blocks until a shutdown signal arrives.
func Run() error {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.SentryDSN)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.PoolMaxConns, cfg.PoolMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	media, err := storage.NewMediaStore(cfg.StorageDir, cfg.ThumbnailDir, cfg.AvatarDir)
	if err != nil {
		return err
	}
	thumbs := storage.NewThumbnailer(cfg.ThumbnailSize, cfg.FFmpegPath, cfg.FFmpegTimeout)

	users := store.NewUsers(pool)
	photos := store.NewPhotos(pool)

	photoService := services.NewPhotoService(users, photos, media, thumbs, cfg)
	userService := services.NewUserService(users, photos, media, cfg)

	app := New(cfg, pool, photoService, userService, media)

	addr := cfg.Host + ":" + cfg.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("server started", "addr", addr, "env", cfg.Environment)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server shutdown complete")
	return nil
}

// New assembles the fiber application: middleware, then every route under
// the API prefix.
func New(cfg *config.Config, pinger handlers.Pinger, photoService *services.PhotoService, userService *services.UserService, media *storage.MediaStore) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
		// Multipart overhead on top of the largest allowed upload.
		BodyLimit: int(cfg.MaxVideoSize) + 1<<20,
	})

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowCredentials: cfg.IsProduction(),
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Photo Archive API",
			"version": config.Version,
			"health":  cfg.APIPrefix + "/health",
		})
	})

	// Routes
	api := app.Group(cfg.APIPrefix)

	api.Get("/health", handlers.HealthHandler(pinger, config.Version))

	api.Post("/photos/upload", handlers.UploadPhotoHandler(photoService, cfg.APIPrefix))
	api.Get("/photos", handlers.ListPhotosHandler(photoService, cfg.APIPrefix))
	api.Get("/photos/:id", handlers.PhotoDetailHandler(photoService, cfg.APIPrefix))
	api.Get("/photos/:id/image", handlers.PhotoImageHandler(photoService, media))
	api.Get("/photos/:id/thumbnail", handlers.PhotoThumbnailHandler(photoService, media))
	api.Patch("/photos/:id/location", handlers.UpdatePhotoLocationHandler(photoService, cfg.APIPrefix))
	api.Delete("/photos/:id", handlers.DeletePhotoHandler(photoService))

	api.Get("/users", handlers.ListUsersHandler(userService, cfg.APIPrefix))
	api.Post("/users", handlers.CreateUserHandler(userService, cfg.APIPrefix))
	api.Get("/users/:id", handlers.UserDetailHandler(userService, cfg.APIPrefix))
	api.Patch("/users/:id", handlers.UpdateUserHandler(userService, cfg.APIPrefix))
	api.Delete("/users/:id", handlers.DeleteUserHandler(userService))
	api.Get("/users/:id/photos", handlers.UserPhotosHandler(photoService, cfg.APIPrefix))
	api.Post("/users/:id/avatar", handlers.UploadAvatarHandler(userService, cfg.APIPrefix))
	api.Get("/users/:id/avatar", handlers.AvatarHandler(userService, media))
	api.Delete("/users/:id/avatar", handlers.DeleteAvatarHandler(userService, cfg.APIPrefix))

	return app
}
