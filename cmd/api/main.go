package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/app"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/config"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/notify"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/storage/postgres"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/storage/rediscache"
	transporthttp "github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/transport/http"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()

	profileRepo := postgres.NewProfileRepository(pool)
	adminCap, created, err := profileRepo.EnsureAdminCap(startupCtx, domain.AdminCap{
		ID:        uuid.NewString(),
		CreatedAt: clk.Now(),
	})
	if err != nil {
		log.Fatalf("ensure admin cap: %v", err)
	}
	if created {
		// Logged exactly once, on first boot against an empty database.
		log.WithField("admin_key", adminCap.ID).Warn("seeded admin cap, store this key")
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		amqpConn, err := notify.Connect(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("connect to amqp: %v", err)
		}
		defer amqpConn.Close()

		amqpNotifier, err := notify.NewAMQPNotifier(amqpConn)
		if err != nil {
			log.Fatalf("create amqp notifier: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	var catalog *rediscache.Catalog
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(startupCtx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		defer redisClient.Close()
		catalog = rediscache.NewCatalog(redisClient, cfg.CatalogCacheTTL)
	}

	eventOpts := []app.EventServiceOption{app.WithEventNotifier(notifier)}
	ticketOpts := []app.TicketServiceOption{
		app.WithTicketNotifier(notifier),
		app.WithRefundMode(app.RefundMode(cfg.RefundMode)),
		app.WithResaleProceeds(app.ResaleProceeds(cfg.ResaleProceeds)),
	}
	if catalog != nil {
		eventOpts = append(eventOpts, app.WithEventCatalog(catalog))
		ticketOpts = append(ticketOpts, app.WithTicketCatalog(catalog))
	}

	eventRepo := postgres.NewEventRepository(pool)
	eventSvc := app.NewEventService(eventRepo, clk, eventOpts...)
	ticketRepo := postgres.NewTicketRepository(pool)
	ticketSvc := app.NewTicketService(ticketRepo, clk, ticketOpts...)
	participantRepo := postgres.NewParticipantRepository(pool)
	participantSvc := app.NewParticipantService(participantRepo, clk)
	profileSvc := app.NewProfileService(profileRepo, clk)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/events", transporthttp.HandleEvents(eventSvc))
	mux.Handle("/events/", transporthttp.HandleEventActions(eventSvc, ticketSvc))
	mux.Handle("/tickets/", transporthttp.HandleTicketActions(ticketSvc))
	mux.Handle("/participants", transporthttp.HandleParticipants(participantSvc))
	mux.Handle("/participants/", transporthttp.HandleParticipantActions(participantSvc))
	mux.Handle("/profiles", transporthttp.HandleProfiles(profileSvc))
	mux.Handle("/profiles/", transporthttp.HandleProfileActions(profileSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}

func loadEnvFile() {
	path, err := findEnvFile()
	if err != nil {
		log.WithError(err).Warn("failed to locate .env")
		return
	}
	if path == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		log.WithError(err).Warnf("failed to open %s", path)
		return
	}
	if err := parseEnvFile(file); err != nil {
		log.WithError(err).Warnf("failed to load %s", path)
	} else {
		log.Infof("loaded env from %s", path)
	}
	_ = file.Close()
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		value = trimQuotes(value)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			log.Warnf("failed to set %s from env file", key)
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
