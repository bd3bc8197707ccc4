// Package api exposes call-logd's HTTP surface: a health/status endpoint,
// Prometheus metrics, and a read-only call log export endpoint. Nothing
// here ever triggers call log generation — that's driven exclusively by
// bus/watch triggers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wazo-platform/call-logd/internal/metrics"
	"github.com/wazo-platform/call-logd/internal/recording"
	"github.com/wazo-platform/call-logd/internal/store"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

type ServerOptions struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DB             *store.DB
	Recordings     recording.Store
	Version        string
	StartTime      time.Time
	RateLimitRPS   float64
	RateLimitBurst int

	Log zerolog.Logger
}

func NewServer(opts ServerOptions) *Server {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RateLimiter(opts.RateLimitRPS, opts.RateLimitBurst))
	r.Use(Recoverer)
	r.Use(Logger(opts.Log))
	r.Use(metrics.InstrumentHandler)

	status := NewStatusHandler(opts.DB, opts.Version, opts.StartTime)
	r.Get("/1.0/status", status.ServeHTTP)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	callLogs := NewCallLogsHandler(opts.DB, opts.Recordings, opts.Log)
	r.Get("/1.0/call-logs", callLogs.List)

	return &Server{
		http: &http.Server{
			Addr:         opts.Addr,
			Handler:      r,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
		log: opts.Log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
