package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/barbergrid/api/internal/config"
	dbpkg "github.com/barbergrid/api/internal/db"
	"github.com/barbergrid/api/internal/locks"
	"github.com/barbergrid/api/internal/logger"
	"github.com/barbergrid/api/internal/middleware"
	"github.com/barbergrid/api/internal/routes"
)

func main() {

	cfg := config.Load()
	logger.Setup(cfg.LogLevel)

	db := dbpkg.NewDB(cfg)
	locker := newLocker(cfg)

	r := gin.Default()

	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, locker)

	log.Info().Str("addr", cfg.Addr()).Msg("server running")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// newLocker picks the distributed lock when Redis is configured; a single
// instance serializes in process.
func newLocker(cfg *config.Config) locks.StaffLocker {
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set, using in-process booking locks")
		return locks.NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, falling back to in-process booking locks")
		return locks.NewLocalLocker()
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis booking locks")
	return locks.NewRedisLocker(client)
}
