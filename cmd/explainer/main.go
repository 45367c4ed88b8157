package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/thinkscotty/explainer/internal/apikey"
	"github.com/thinkscotty/explainer/internal/auth"
	"github.com/thinkscotty/explainer/internal/config"
	"github.com/thinkscotty/explainer/internal/database"
	"github.com/thinkscotty/explainer/internal/explain"
	"github.com/thinkscotty/explainer/internal/gemini"
	"github.com/thinkscotty/explainer/internal/safety"
	"github.com/thinkscotty/explainer/internal/scheduler"
	"github.com/thinkscotty/explainer/internal/scraper"
	"github.com/thinkscotty/explainer/internal/server"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	genKey := flag.Bool("genkey", false, "Generate an access key and its hash, then exit")
	showStats := flag.Bool("stats", false, "Print usage statistics from the database and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Explainer %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if *genKey {
		if err := runGenKey(); err != nil {
			fmt.Fprintf(os.Stderr, "Key generation failed: %s\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logging.LogLevel()})))

	if *showStats {
		if err := runStats(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %s\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	slog.Info("Starting Explainer", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	sc, err := safety.NewScanner(cfg.Safety.ExtraTerms)
	if err != nil {
		slog.Error("Failed to build safety scanner", "error", err)
		os.Exit(1)
	}

	var model explain.Model
	client, err := gemini.New(ctx, cfg.Gemini)
	switch {
	case errors.Is(err, explain.ErrConfiguration):
		slog.Warn("GEMINI_API_KEY is not set; explain requests will fail until it is configured")
	case err != nil:
		slog.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	default:
		defer client.Close()
		model = client
		slog.Info("Gemini client ready", "model", client.Name())
	}

	resolver := scraper.New(cfg.Scraper.UserAgent, cfg.Scraper.Timeout())
	explainer := explain.New(sc, resolver, model)

	// Initialize usage log
	var store server.Store
	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database.Path)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		slog.Info("Database initialized", "path", cfg.Database.Path)

		go scheduler.New(db, cfg.Database.RetentionDays).Run(ctx)
	}

	// Build HTTP server
	srv := server.New(cfg, explainer, store, version)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	if cfg.Server.AccessKeyHash == "" {
		slog.Warn("No access key configured; the explain API is open to anyone who can reach it")
	}

	// Start serving
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func runGenKey() error {
	key, err := apikey.Generate(4)
	if err != nil {
		return err
	}
	hash := auth.HashKey(key)

	fmt.Printf("Access key: %s\n", key)
	fmt.Println("Give the key to clients; they send it as \"Authorization: Bearer <key>\".")
	fmt.Println("Add the hash to config.yaml:")
	fmt.Println()
	fmt.Println("server:")
	fmt.Printf("  access_key_hash: %q\n", hash)
	return nil
}

func runStats(cfg config.Config) error {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		return err
	}
	recent, err := db.RecentExplains(10)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"stats":  stats,
		"recent": recent,
	})
}
