package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tendant/chi-demo/app"
	apikey "github.com/tendant/chi-demo/middleware"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
	"github.com/tendant/simple-sorter/pkg/simplesorter/api"
	"github.com/tendant/simple-sorter/pkg/simplesorter/config"
	"github.com/tendant/simple-sorter/pkg/simplesorter/metrics"
)

const maxRequestBytes = 1 << 20

func main() {
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(serverConfig.Environment)
	slog.SetDefault(logger)

	if serverConfig.DatabaseType == config.DatabasePostgres {
		if err := serverConfig.PingPostgres(); err != nil {
			slog.Error("Database is not reachable", "error", err)
			os.Exit(1)
		}
	}

	collector := metrics.NewCollector("simple_sorter")

	var opts []simplesorter.Option
	opts = append(opts, simplesorter.WithLogger(logger))
	if serverConfig.EnableMetrics {
		var sinks simplesorter.MultiEventSink
		if serverConfig.EnableEventLogging {
			sinks = append(sinks, simplesorter.NewLoggingEventSink(logger))
		}
		sinks = append(sinks, collector)
		opts = append(opts, simplesorter.WithEventSink(sinks))
	}

	svc, err := serverConfig.BuildService(opts...)
	if err != nil {
		slog.Error("Failed to build service", "error", err)
		os.Exit(1)
	}

	server := NewHTTPServer(svc, serverConfig, collector)
	handler, err := server.Routes()
	if err != nil {
		slog.Error("Failed to set up routes", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Simple Sorter Server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// HTTPServer wraps the sorter service for HTTP access
type HTTPServer struct {
	service   simplesorter.Service
	config    *config.ServerConfig
	collector *metrics.Collector
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service simplesorter.Service, serverConfig *config.ServerConfig, collector *metrics.Collector) *HTTPServer {
	return &HTTPServer{
		service:   service,
		config:    serverConfig,
		collector: collector,
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.LoggingMiddleware(slog.Default()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-KEY", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.config.EnableMetrics && s.collector != nil {
		r.Use(s.collector.Middleware)
		r.Method(http.MethodGet, "/metrics", s.collector.Handler())
	}

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)

	handler := api.NewSorterHandler(s.service)

	var requireKey func(http.Handler) http.Handler
	if s.config.APIKeySHA256 != "" {
		mw, err := apikey.ApiKeyMiddleware(apikey.ApiKeyConfig{
			APIKeys: map[string]string{
				"admin": s.config.APIKeySHA256,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API key middleware: %w", err)
		}
		requireKey = mw
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api.RequestSizeLimitMiddleware(maxRequestBytes))

		r.Mount("/public", handler.PublicRoutes())

		r.Group(func(r chi.Router) {
			if requireKey != nil {
				r.Use(requireKey)
			}
			r.Mount("/admin", handler.Routes())
		})
	})

	return r, nil
}
