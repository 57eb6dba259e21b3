// roomserver is the anonymous telemedicine room coordinator: it accepts
// WebSocket connections, authenticates doctors via a signed token,
// relays and translates messages between a patient and doctor pair, and
// persists an encrypted transcript.
//
// Usage:
//
//	roomserver
//
// Configuration is read entirely from ROOMCORE_* environment variables
// (SPEC_FULL.md §6); there is no config file or CLI flag surface,
// mirroring the teacher's signal-driven device examples
// (examples/common.RunDevice) rather than their flag-parsing one, since
// this binary runs as a service, not an interactively-commissioned
// device.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pion/logging"
	"github.com/redis/go-redis/v9"

	"github.com/quietroom/core/pkg/artifactcache"
	"github.com/quietroom/core/pkg/config"
	"github.com/quietroom/core/pkg/coordinator"
	"github.com/quietroom/core/pkg/messagestore"
	"github.com/quietroom/core/pkg/provider"
	"github.com/quietroom/core/pkg/roomstore"
	"github.com/quietroom/core/pkg/token"
	"github.com/quietroom/core/pkg/transport"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("roomserver: %v", err)
	}

	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = parseLogLevel(cfg.LogLevel)
	logger := factory.NewLogger("roomserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Errorf("connect to postgres: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	var cache artifactcache.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Errorf("parse ROOMCORE_REDIS_URL: %v", err)
			os.Exit(1)
		}
		cache = artifactcache.NewRedisCache(redis.NewClient(opts))
	} else {
		logger.Warnf("ROOMCORE_REDIS_URL not set, falling back to an in-memory artifact cache")
		cache = artifactcache.NewMemCache()
	}

	deps := coordinator.Deps{
		Rooms:       roomstore.NewPGStore(pool),
		Messages:    messagestore.NewPGStore(pool),
		Tokens:      token.NewVerifier(cfg.TokenSecret),
		Translator:  provider.NewAnthropicTranslator(cfg.AnthropicAPIKey, cache, logger),
		Transcriber: provider.NewHTTPTranscriber(cfg.ASRBaseURL, logger),
		Synthesizer: provider.NewHTTPSynthesizer(cfg.TTSBaseURL, cache, logger),
		Log:         logger,
	}
	coord := coordinator.New(deps, coordinator.Config{OfflineQueueCap: cfg.OfflineQueueCap})

	srv := newServer(coord, cfg, logger)
	go func() {
		logger.Infof("roomserver: listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("roomserver: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// parseLogLevel maps ROOMCORE_LOG_LEVEL to a pion/logging level,
// defaulting to Info for anything unrecognized rather than refusing to
// start over a typo'd env var.
func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "disable", "disabled":
		return logging.LogLevelDisabled
	case "error":
		return logging.LogLevelError
	case "warn":
		return logging.LogLevelWarn
	case "debug":
		return logging.LogLevelDebug
	case "trace":
		return logging.LogLevelTrace
	default:
		return logging.LogLevelInfo
	}
}

func newServer(coord *coordinator.Coordinator, cfg *config.Config, logger logging.LeveledLogger) *http.Server {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.CORSOrigin == "" || r.Header.Get("Origin") == cfg.CORSOrigin
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnf("roomserver: websocket upgrade failed: %v", err)
			return
		}
		serveSocket(r.Context(), coord, conn, logger)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}
}

// serveSocket wires one connection's ReadPump/WritePump pair to the
// coordinator, grounded on CatsMeow492's per-connection goroutine split
// (pkg/transport/websocket.go is the pump implementation itself).
func serveSocket(ctx context.Context, coord *coordinator.Coordinator, conn *websocket.Conn, logger logging.LeveledLogger) {
	sock := transport.NewWebSocketSocket(conn, logger)

	go sock.WritePump()
	sock.ReadPump(func(s *transport.WebSocketSocket, event transport.Event) {
		coord.HandleEvent(ctx, s, event)
	})

	coord.HandleEvent(ctx, sock, transport.Event{Type: "disconnect"})
}
