package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
	"github.com/fgmcolas/ShakeItUp/internal/auth"
	"github.com/fgmcolas/ShakeItUp/internal/cocktails"
	"github.com/fgmcolas/ShakeItUp/internal/config"
	apphttp "github.com/fgmcolas/ShakeItUp/internal/http"
	"github.com/fgmcolas/ShakeItUp/internal/logging"
	"github.com/fgmcolas/ShakeItUp/internal/media"
	"github.com/fgmcolas/ShakeItUp/internal/ratings"
	"github.com/fgmcolas/ShakeItUp/internal/router"
	storagemongo "github.com/fgmcolas/ShakeItUp/internal/storage/mongo"
	"github.com/fgmcolas/ShakeItUp/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewDefault()
	ctx := context.Background()

	client, db, err := storagemongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	if err := storagemongo.EnsureIndexes(ctx, db, cfg.CocktailNameCI); err != nil {
		log.Fatalf("indexes: %v", err)
	}

	images, err := media.NewS3Store(media.S3Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		UseSSL:        cfg.S3UseSSL,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	userRepo := users.NewRepository(db)
	catalogRepo := cocktails.NewRepository(db)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.FiberHandler(logger),
		BodyLimit:    media.MaxImageBytes + 1<<20,
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	r := &router.Router{
		AuthHandler: &apphttp.AuthHandler{
			Users:      userRepo,
			Tokens:     tokens,
			BcryptCost: cfg.BcryptCost,
			Log:        logger,
		},
		UserHandler:     users.NewHandler(userRepo, catalogRepo, logger),
		CocktailHandler: cocktails.NewHandler(catalogRepo, images, logger),
		RatingHandler:   ratings.NewHandler(catalogRepo, userRepo, logger),
		AuthMW:          auth.Middleware(tokens),
		AuthLimiter:     router.RateLimitAuth(cfg.AuthRateMax),
		WriteLimit:      router.RateLimitWrite(cfg.WriteRateMax),
	}
	r.RegisterRoutes(app)

	logger.Info(ctx, "listening", "addr", cfg.Addr)
	log.Fatal(app.Listen(cfg.Addr))
}

func requestLogger(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info(c.UserContext(), "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}
