// cmd/assistant/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/config"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/database"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/observability"
	"github.com/johnny-stegall/Digital-Assistant/internal/dispatch"
	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/calendar"
	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/navigator"
	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/placedetails"
	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
	"github.com/johnny-stegall/Digital-Assistant/internal/notify"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider/elasticplaces"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider/googlecalendar"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider/googlemaps"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider/pgcalendar"
	"github.com/johnny-stegall/Digital-Assistant/internal/session"
)

const maxPayloadBytes = 64 * 1024

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("assistant")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Calendar provider ---
	var cal provider.Calendar
	switch cfg.Providers.Calendar {
	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres failed", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Ping(ctx); err != nil {
			zapLog.Fatal("postgres ping failed", zap.Error(err))
		}
		cal = pgcalendar.New(pg.DB, log)
		zapLog.Info("PostgreSQL calendar provider connected")
	default:
		cal = googlecalendar.New(cfg.Providers, log)
		zapLog.Info("Google Calendar provider configured")
	}

	// --- Maps provider ---
	var maps provider.Maps
	switch cfg.Providers.Maps {
	case "elasticsearch":
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch failed", zap.Error(err))
		}
		if err := esClient.Ping(); err != nil {
			zapLog.Fatal("elasticsearch ping failed", zap.Error(err))
		}
		maps = elasticplaces.New(esClient, cfg.Database.Elasticsearch.PlaceIndex, log)
		zapLog.Info("Elasticsearch places provider connected")
	default:
		maps = googlemaps.New(cfg.Providers, cfg.Assistant.CurrentAddress, log)
		zapLog.Info("Google Maps provider configured")
	}

	// --- Session store ---
	var store session.Store
	switch cfg.Sessions.Backend {
	case "redis":
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis failed", zap.Error(err))
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLog.Fatal("redis ping failed", zap.Error(err))
		}
		store = session.NewRedisStore(redisClient.GetClient(), time.Duration(cfg.Sessions.TTL)*time.Second)
		zapLog.Info("Redis session store connected")
	default:
		store = session.NewMemoryStore()
		zapLog.Info("In-memory session store configured")
	}

	sessions := session.NewManager(store, maps, log)

	// --- Notification channels ---
	var notifier *notify.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		notifier, err = notify.New(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notification client failed", zap.Error(err))
		}
		zapLog.Info("Notification channels initialized")
	}

	// --- Handlers & Dispatcher ---
	navCfg, err := navigator.LoadConfig(cfg.Assistant)
	if err != nil {
		zapLog.Fatal("assistant config invalid", zap.Error(err))
	}

	calHandler := calendar.NewHandler(calendar.LoadConfig(), cal, log)
	navHandler := navigator.NewHandler(navCfg, sessions, maps, log)
	detailHandler := placedetails.NewHandler(placedetails.LoadConfig(), cal, maps, notifier, log)

	dispatcher := dispatch.NewDispatcher(calHandler, navHandler, detailHandler,
		sessions, obs, navCfg.CurrentCoordinates, log)

	turnTimeout := time.Duration(cfg.Assistant.TurnTimeout) * time.Millisecond

	// --- API Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable request body")
			return
		}

		payload, err := intent.ParsePayload(body)
		if err != nil {
			log.WithError(err).Warn("rejected intent payload", nil)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		turnCtx, cancel := context.WithTimeout(r.Context(), turnTimeout)
		defer cancel()

		reply := dispatcher.Dispatch(turnCtx, payload)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: turnTimeout + 5*time.Second,
	}

	go func() {
		zapLog.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Metrics Server ---
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.MetricsPort), metricsMux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("API server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Assistant stopped gracefully")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
