package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	adapthttp "tickets/internal/adapter/http"
	"tickets/internal/adapter/postgres"
	"tickets/internal/app"
	"tickets/internal/config"

	"github.com/roylee0704/gron"
	"github.com/roylee0704/gron/xtime"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Parse()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	defer func() { _ = db.Close() }()

	transferSvc := app.NewTransferService(db, db, cfg.DailyLimit)
	rankingSvc := app.NewRankingService(db, db, db)
	rolloverSvc := app.NewRolloverService(db, db, log)

	// The daily rollover fires on a fixed local-time schedule; season close
	// stays operator-driven through the maintenance endpoint.
	cron := gron.New()
	cron.AddFunc(gron.Every(1*xtime.Day).At(cfg.DailyResetAt), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := rolloverSvc.DailyMergeAndReset(ctx); err != nil {
			log.Error().Err(err).Msg("daily rollover")
		}
	})
	cron.Start()
	defer cron.Stop()

	h := adapthttp.New(transferSvc, rankingSvc, rolloverSvc, cfg.AdminToken).Handler()
	log.Info().Str("addr", cfg.Addr).Int64("dailyLimit", cfg.DailyLimit).Msg("listening")
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}
