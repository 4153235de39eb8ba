package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/config"
	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/duel"
	"github.com/krishanu7/geoduel-backend/internal/leaderboard"
	"github.com/krishanu7/geoduel-backend/internal/notify"
	"github.com/krishanu7/geoduel-backend/internal/server"
	"github.com/krishanu7/geoduel-backend/internal/stats"
	"github.com/krishanu7/geoduel-backend/internal/store/memory"
	"github.com/krishanu7/geoduel-backend/internal/store/postgres"
	"github.com/krishanu7/geoduel-backend/internal/ws"
	"github.com/krishanu7/geoduel-backend/pkg/redis"
	wsPkg "github.com/krishanu7/geoduel-backend/pkg/websocket"
)

type repositories struct {
	users       auth.UserRepository
	duels       duel.Repository
	stats       stats.Repository
	leaderboard leaderboard.Repository
}

func main() {
	cfg := config.LoadConfig()
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	repos, conn := openStore(ctx, cfg, clock)
	if conn != nil {
		defer conn.Close()
	}

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		var err error
		rdb, err = redis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	}

	// Verification emails go through Redis to cmd/mailer when Redis is
	// configured, otherwise they are delivered in-process.
	var sender auth.VerificationSender
	var publisher duel.EventPublisher
	if rdb != nil {
		sender = notify.NewRedisQueue(rdb)
		publisher = notify.NewRedisPublisher(rdb)
	} else {
		dispatcher := notify.NewDispatcher(notify.NewMailer(smtpConfig(cfg)), cfg.AppBaseURL, cfg.NotifyWorkers, 256)
		defer dispatcher.Close()
		sender = dispatcher
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:          []byte(cfg.JWTSecret),
		Algorithm:       cfg.JWTAlgorithm,
		AccessTTL:       cfg.AccessTokenTTL,
		VerificationTTL: cfg.VerificationTTL,
	}, clock)
	if err != nil {
		log.Fatalf("Failed to initialise token service: %v", err)
	}

	deps := server.Deps{
		Auth:        auth.NewService(repos.users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, sender, clock),
		Gate:        auth.NewGate(tokens, repos.users),
		Duels:       duel.NewService(repos.duels, publisher, clock),
		Stats:       stats.NewService(repos.stats),
		Leaderboard: leaderboard.NewService(repos.leaderboard),
		CORS:        cfg.CORS(),
	}
	if conn != nil {
		deps.Health = func(r *http.Request) error { return conn.PingContext(r.Context()) }
	}

	if rdb != nil {
		hub := wsPkg.NewHub()
		defer hub.CloseAll()
		deps.WS = ws.NewHandler(hub)
		go ws.NewNotificationWorker(rdb, hub).Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(deps),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("Server started at %s (store=%s)", srv.Addr, cfg.StoreDriver)

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	log.Info("Server gracefully stopped")
}

func openStore(ctx context.Context, cfg config.Config, clock clockwork.Clock) (repositories, *sql.DB) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("Using in-memory store; data is lost on restart")
		s := memory.New(clock)
		return repositories{s.Users(), s.Duels(), s.Statistics(), s.Leaderboard()}, nil
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DBUrl); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}
	conn, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	s := postgres.New(conn)
	return repositories{s.Users(), s.Duels(), s.Statistics(), s.Leaderboard()}, conn
}

func smtpConfig(cfg config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}
