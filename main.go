package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/card"
	"github.com/robalobadob/bingo/internal/catalog"
	"github.com/robalobadob/bingo/internal/httpserver"
	"github.com/robalobadob/bingo/internal/keycodec"
	"github.com/robalobadob/bingo/internal/ledger"
	"github.com/robalobadob/bingo/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cat, err := catalog.Load(os.Getenv("CATALOG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load phrase catalog")
	}
	log.Info().
		Str("version", cat.Version()).
		Str("fingerprint", cat.Fingerprint()).
		Int("phrases", cat.Len()).
		Msg("catalog loaded")

	dealer := &card.Dealer{Catalog: cat, Source: keycodec.CryptoSource{}}

	var led *ledger.Store
	if dsn := getEnv("DB_PATH", "./data/bingo.db"); dsn != "off" {
		db, err := openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("db", dsn).Msg("failed to open ledger")
		}
		defer db.Close()
		led = ledger.NewStore(db)
		dealer.Celebrator = led
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go store.Reap(ctx, mem, 10*time.Minute, 6*time.Hour, func(n int) {
		log.Debug().Int("cards", n).Msg("swept idle cards")
	})

	srv := httpserver.New(dealer, mem, led)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting bingo server")
	if err := srv.Start(ctx, ":"+port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
