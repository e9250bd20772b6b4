package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/folio-dev/folio/internal/auth"
	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/logger"
	"github.com/folio-dev/folio/internal/server"
	"github.com/folio-dev/folio/internal/store"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	st, err := server.OpenStore(context.Background(), cfg, log)
	if err != nil {
		event := log.Fatal().Err(err).Str("driver", cfg.Database.Driver)
		if errors.Is(err, store.ErrDatabaseUnavailable) {
			event = event.Str("hint", "check MONGO_URI and that the database is running")
		}
		event.Msg("Failed to connect to database")
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clockwork.NewRealClock())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token issuer")
	}

	authService := auth.NewService(st, auth.NewBcryptHasher(), issuer, log)
	srv := server.New(cfg, st, authService, log, version)

	log.Info().
		Str("version", version).
		Str("driver", cfg.Database.Driver).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Folio server...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		if errors.Is(err, server.ErrPortInUse) {
			log.Error().Err(err).Str("port", cfg.Server.Port).Msg("Port is already in use")
			log.Info().Msg("Stop the process holding the port (e.g. `lsof -i :" + cfg.Server.Port + "`) or set PORT to a free port")
			_ = st.Close(context.Background())
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Server failed")
	}
}
