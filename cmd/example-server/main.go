package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/xrl-go/xrl/pkg/limiter"
)

type config struct {
	Listen    string  `yaml:"listen"`
	LogLevel  string  `yaml:"log_level"`
	Algorithm string  `yaml:"algorithm"` // "token_bucket" or "fixed_window"
	Capacity  float64 `yaml:"capacity"`
	Rate      float64 `yaml:"rate"` // units per second

	Redis struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`
}

func loadConfig(path string) (*config, error) {
	cfg := &config{
		Listen:    ":8080",
		LogLevel:  "info",
		Algorithm: string(limiter.TokenBucket),
		Capacity:  10,
		Rate:      5,
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Prefix = "demo:"

	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}

func main() {
	configPath := flag.String("config", "", "path to yaml config (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

	registry := prometheus.NewRegistry()
	recorder := limiter.NewPrometheusRecorder(registry)

	l, err := limiter.New(client, limiter.Algorithm(cfg.Algorithm),
		limiter.WithPrefix(cfg.Redis.Prefix),
		limiter.WithTimeout(2*time.Second),
		limiter.WithLogger(logger),
		limiter.WithRecorder(recorder),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("create limiter")
	}

	limit := limiter.Limit{Capacity: cfg.Capacity, Rate: cfg.Rate}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		dec, err := l.Decide(r.Context(), r.RemoteAddr, limit)
		if err != nil {
			// Fail open: a limiter outage should not take the service down.
			logger.Error().Err(err).Msg("limiter error")
		} else if !dec.Allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%.2f", dec.RetryAfter.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("Rate limit exceeded\n"))
			return
		}
		_, _ = w.Write([]byte("Pong!\n"))
	})

	logger.Info().
		Str("listen", cfg.Listen).
		Str("redis", cfg.Redis.Addr).
		Str("algorithm", cfg.Algorithm).
		Msg("server starting")

	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
