package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wazo-platform/call-logd/internal/api"
	"github.com/wazo-platform/call-logd/internal/bus"
	"github.com/wazo-platform/call-logd/internal/callgen"
	"github.com/wazo-platform/call-logd/internal/confd"
	"github.com/wazo-platform/call-logd/internal/config"
	"github.com/wazo-platform/call-logd/internal/metrics"
	"github.com/wazo-platform/call-logd/internal/recording"
	"github.com/wazo-platform/call-logd/internal/store"
	"github.com/wazo-platform/call-logd/internal/watch"
)

// version, commit, and buildTime are injected at build time via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var overrides config.Overrides
	var showVersion bool
	flag.StringVar(&overrides.EnvFile, "env-file", "", "Path to .env file (default: .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.DatabaseURL, "database-url", "", "PostgreSQL connection URL (overrides DATABASE_URL)")
	flag.StringVar(&overrides.MQTTBrokerURL, "mqtt-url", "", "MQTT broker URL (overrides MQTT_BROKER_URL)")
	flag.StringVar(&overrides.WatchDir, "watch-dir", "", "Trigger-file directory (overrides WATCH_DIR)")
	flag.StringVar(&overrides.ConfdURL, "confd-url", "", "Directory service base URL (overrides CONFD_URL)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("%s (commit=%s, built=%s)\n", version, commit, buildTime)
		os.Exit(0)
	}

	startTime := time.Now()

	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().
		Str("version", version).
		Str("commit", commit).
		Str("built", buildTime).
		Str("log_level", level.String()).
		Msg("call-logd starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbLog := log.With().Str("component", "store").Logger()
	db, err := store.Connect(ctx, cfg.DatabaseURL, dbLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}

	directory := confd.New(confd.Options{
		BaseURL: cfg.ConfdURL,
		Token:   cfg.ConfdToken,
		Timeout: cfg.ConfdTimeout,
		RateRPS: cfg.ConfdRateRPS,
	})

	recordingStore, err := recording.New(ctx, recording.Config{
		LocalDir: cfg.RecordingsDir,
		S3Bucket: cfg.S3Bucket,
		S3Region: cfg.S3Region,
	}, log.With().Str("component", "recording").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize recording storage")
	}

	recorder := metrics.Recorder{}
	generator := callgen.NewGenerator(directory, cfg.ServiceTenantUUID, recorder, log.With().Str("component", "generator").Logger())

	// process runs one fromCel invocation for a completed call, persists
	// the result, and publishes the corresponding bus events.
	process := func(triggerCtx context.Context, linkedID string, busClient *bus.Client) {
		cels, err := db.FetchByLinkedId(triggerCtx, linkedID)
		if err != nil {
			log.Error().Err(err).Str("linked_id", linkedID).Msg("failed to fetch CELs")
			return
		}
		if len(cels) == 0 {
			log.Warn().Str("linked_id", linkedID).Msg("no CELs found for triggered linked-id")
			return
		}

		creation, err := generator.FromCel(triggerCtx, cels)
		if err != nil {
			log.Error().Err(err).Str("linked_id", linkedID).Msg("fromCel failed")
			return
		}

		if err := db.DeleteCallLogsByIds(triggerCtx, creation.CallLogIDsToDelete); err != nil {
			log.Error().Err(err).Msg("failed to delete superseded call logs")
		}

		for _, cl := range creation.NewCallLogs {
			id, err := db.InsertCallLog(triggerCtx, cl)
			if err != nil {
				log.Error().Err(err).Str("linked_id", linkedID).Msg("failed to persist call log")
				continue
			}
			if busClient != nil {
				if err := busClient.PublishCallLogCreated(triggerCtx, id, cl); err != nil {
					log.Error().Err(err).Int64("call_log_id", id).Msg("failed to publish call log events")
				}
			}
		}
	}

	var busClient *bus.Client
	if cfg.MQTTBrokerURL != "" {
		busLog := log.With().Str("component", "bus").Logger()
		busClient, err = bus.Connect(bus.Options{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  cfg.MQTTClientID,
			Username:  cfg.MQTTUsername,
			Password:  cfg.MQTTPassword,
			Log:       busLog,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mqtt broker")
		}
		defer busClient.Close()

		if err := busClient.SubscribeTriggers(cfg.TriggerTopic, func(linkedID string) {
			metrics.TriggersReceivedTotal.WithLabelValues("bus").Inc()
			process(ctx, linkedID, busClient)
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe to trigger topic")
		}
		log.Info().Str("broker", cfg.MQTTBrokerURL).Str("topic", cfg.TriggerTopic).Msg("bus trigger subscribed")
	}

	if cfg.WatchDir != "" {
		fileWatcher := watch.New(cfg.WatchDir, func(linkedID string) {
			metrics.TriggersReceivedTotal.WithLabelValues("watch").Inc()
			process(ctx, linkedID, busClient)
		}, log)
		if err := fileWatcher.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start file watcher")
		}
		defer fileWatcher.Stop()
		log.Info().Str("watch_dir", cfg.WatchDir).Msg("file watcher started")
	}

	srv := api.NewServer(api.ServerOptions{
		Addr:           cfg.HTTPAddr,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		DB:             db,
		Recordings:     recordingStore,
		Version:        fmt.Sprintf("%s (commit=%s, built=%s)", version, commit, buildTime),
		StartTime:      startTime,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Log:            log.With().Str("component", "http").Logger(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info().
		Str("listen", cfg.HTTPAddr).
		Str("version", version).
		Dur("startup_ms", time.Since(startTime)).
		Msg("call-logd ready")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
}
