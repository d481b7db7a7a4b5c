package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Config is read once from the environment at startup.
type Config struct {
	Addr         string
	TTMegabytes  int
	MaxDepth     int
	TimeBudgetMs int64
	Workers      int
	LogLevel     string
	LogPretty    bool
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		TTMegabytes:  16,
		MaxDepth:     20,
		TimeBudgetMs: 500,
		Workers:      0, // not passed to the engine, which always runs min(NumCPU, 8) workers
		LogLevel:     "info",
		LogPretty:    false,
	}
}

func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.Addr = envString("NINUKI_ADDR", cfg.Addr)
	cfg.TTMegabytes = envInt("NINUKI_TT_MB", cfg.TTMegabytes)
	cfg.MaxDepth = envInt("NINUKI_MAX_DEPTH", cfg.MaxDepth)
	cfg.TimeBudgetMs = int64(envInt("NINUKI_TIME_BUDGET_MS", int(cfg.TimeBudgetMs)))
	cfg.Workers = envInt("NINUKI_WORKERS", cfg.Workers)
	cfg.LogLevel = envString("NINUKI_LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = envBool("NINUKI_LOG_PRETTY", cfg.LogPretty)
	return cfg
}

func newLogger(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.LogPretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
