package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"cardiorisk/internal/cfg"
	"cardiorisk/internal/engine"
	"cardiorisk/internal/inference"
	"cardiorisk/internal/match"
	"cardiorisk/internal/metrics"
	"cardiorisk/internal/model"
	"cardiorisk/internal/server"
	"cardiorisk/internal/storage"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	if c.ModelBaseURL != "" {
		model.FetchArtifacts(c.ModelBaseURL, c.ModelsDir, c.FetchTimeout)
	}
	registry := model.Load(c.ModelsDir)
	m.ModelsLoaded.Set(float64(registry.LoadedCount()))
	if !registry.Available() {
		log.Warn().Msg("primary classifier unavailable, evaluations will be rejected")
	}

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	var lookup match.CandidateLookup
	if store != nil {
		lookup = store
	}

	svc := inference.New(registry, metrics.NewWrapper(m))
	eng := engine.New(svc, store, lookup, m, c.ImportanceLimit)

	startMetricsServer(ctx, c, eng)

	api := server.New(eng, store, fmt.Sprintf(":%d", c.APIPort))
	go func() {
		if err := api.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api server failed")
			cancel()
		}
	}()

	waitForShutdown(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown api server")
	}
}

// initializeStorage opens storage if DATA_PATH is configured and seeds
// the specialist pool when a seed file is set.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	if c.SpecialistSeed != "" {
		n, err := store.SeedSpecialists(c.SpecialistSeed)
		if err != nil {
			log.Warn().Err(err).Str("seed", c.SpecialistSeed).Msg("specialist seed failed")
		} else {
			log.Info().Int("specialists", n).Msg("specialist pool seeded")
		}
	}
	return store
}

// startMetricsServer starts the Prometheus metrics HTTP server.
func startMetricsServer(ctx context.Context, c cfg.Settings, eng *engine.Engine) {
	go func() {
		mux := http.NewServeMux()

		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if !eng.Available() {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("model not loaded"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := srv.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown blocks until a shutdown signal arrives or the context
// is cancelled.
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}
	log.Info().Msg("shutting down gracefully...")
}
