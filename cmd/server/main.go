package main

import (
	"log"
	"strings"
	"time"

	"pastehub/pkg/broker"
	"pastehub/pkg/cache"
	"pastehub/pkg/config"
	"pastehub/pkg/database"
	"pastehub/pkg/handlers"
	"pastehub/pkg/hub"
	"pastehub/pkg/middleware"
	"pastehub/pkg/notifier"
	"pastehub/pkg/repository"
	"pastehub/pkg/server"
	"pastehub/pkg/services"
	"pastehub/pkg/storage"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg.DatabaseURL)
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(3 * time.Minute)

	database.Migrate(db)

	log.Println("[PASTEHUB] Connecting to Redis...")
	redis := cache.New(cfg.RedisURL)
	defer redis.Close()
	log.Println("[PASTEHUB] Redis connected")

	mq := broker.New(cfg.RabbitMQURL)
	defer mq.Close()

	blobs, err := storage.NewMinio(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("[PASTEHUB] object storage unavailable: %v", err)
	}

	wsHub := hub.New()

	liveNotifier := notifier.New(mq, wsHub)
	liveNotifier.Start()
	defer liveNotifier.Stop()

	users := repository.NewUserRepository(db)
	texts := repository.NewTextRepository(db)
	views := repository.NewViewRepository(db)
	audios := repository.NewAudioRepository(db)

	recorder := services.NewViewRecorder(views, mq)

	authHandler := handlers.NewAuth(services.NewAuthService(users, cfg.JWTSecret))
	textsHandler := handlers.NewTexts(
		services.NewTextService(texts, liveNotifier),
		services.NewShareService(texts, recorder, redis),
	)
	audiosHandler := handlers.NewAudios(services.NewAudioService(audios, blobs))
	analyticsHandler := handlers.NewAnalytics(services.NewAnalyticsService(texts, views))

	app := server.NewApp("pastehub")
	authRequired := middleware.Auth(cfg.JWTSecret)

	api := app.Group("/api")

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	api.Post("/texts", authRequired, textsHandler.Create)
	api.Get("/texts", authRequired, textsHandler.List)
	api.Get("/texts/:id", authRequired, textsHandler.Get)
	api.Put("/texts/:id", authRequired, textsHandler.Update)
	api.Delete("/texts/:id", authRequired, textsHandler.Delete)

	// Public share page: the view-tracking pipeline's entry point.
	api.Get("/share/:shareableId", textsHandler.GetShared)

	api.Post("/audios", authRequired, audiosHandler.Upload)
	api.Get("/audios/:id", authRequired, audiosHandler.Get)
	api.Delete("/audios/:id", authRequired, audiosHandler.Delete)
	api.Get("/audios/share/:shareableId/stream", audiosHandler.Stream)

	api.Get("/analytics/text/:id", authRequired, analyticsHandler.TextStats)

	app.Get("/hub/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"clients": wsHub.ClientCount()})
	})

	// Realtime subscribers: anonymous share viewers are allowed, a valid
	// token just attaches the user id.
	app.Use("/ws", parseWSToken(cfg.JWTSecret))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(int)
		wsHub.HandleClientConn(c, userID)
	}))

	addr := "0.0.0.0:" + cfg.Port
	log.Printf("[PASTEHUB] Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[PASTEHUB] Failed to start: %v", err)
	}
}

func parseWSToken(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenStr := c.Query("token")
		if tokenStr == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = authHeader[7:]
			}
		}

		userID := 0
		if tokenStr != "" {
			token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err == nil && token.Valid {
				claims := token.Claims.(*jwt.MapClaims)
				if id, ok := (*claims)["user_id"].(float64); ok {
					userID = int(id)
				}
			}
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
