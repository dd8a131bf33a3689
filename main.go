package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reverse-Call-Center/railway-ivr/config"
	"github.com/Reverse-Call-Center/railway-ivr/dialog"
	"github.com/Reverse-Call-Center/railway-ivr/intent"
	"github.com/Reverse-Call-Center/railway-ivr/locale"
	"github.com/Reverse-Call-Center/railway-ivr/server"
	"github.com/Reverse-Call-Center/railway-ivr/session"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Info().Msg("railway IVR starting")

	cfg, err := config.LoadConfig("./configs/config.json")
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	locales, err := locale.Load(cfg.LocalesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading locales")
	}

	catalog := loadCatalog(cfg, log)

	composer := &dialog.Composer{
		Locales:         locales,
		Catalog:         catalog,
		Lookup:          dialog.NewStaticLookup(locales, dialog.CatalogAnswers(catalog)),
		LookupTimeout:   cfg.LookupTimeout(),
		GatherTimeout:   cfg.GatherTimeoutSeconds,
		DefaultLanguage: types.Language(cfg.DefaultLanguage),
		Log:             log,
	}

	engine, err := dialog.NewEngine(catalog, composer, cfg.RetryMax, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error building dialogue engine")
	}

	redisClient := session.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, log)
	sessions := session.NewManager(redisClient, cfg.SessionIdleTimeout(), cfg.MaxSessions, log)
	defer sessions.Shutdown()

	go sessions.StartCleanupRoutine(ctx, time.Minute)

	srv := server.New(engine, sessions, cfg, log)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("railway IVR stopped")
}

func loadCatalog(cfg *config.Config, log zerolog.Logger) *intent.Catalog {
	catalog, err := config.LoadIntentCatalog(cfg.IntentsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", cfg.IntentsPath).Msg("no intents file, using built-in catalog")
			return intent.Default()
		}
		log.Fatal().Err(err).Msg("error loading intent catalog")
	}
	return catalog
}
