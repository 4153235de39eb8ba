package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/config"
	"github.com/krishanu7/geoduel-backend/internal/notify"
	"github.com/krishanu7/geoduel-backend/pkg/redis"
)

func main() {
	cfg := config.LoadConfig()
	cfg.SetupLogging()
	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is required for the mailer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	log.Info("Mailer service starting...")
	worker := notify.NewWorker(notify.NewRedisQueue(rdb), mailer, cfg.AppBaseURL, nil)
	if err := worker.Run(ctx); err != nil {
		log.Errorf("Mailer stopped with error: %v", err)
	}
}
