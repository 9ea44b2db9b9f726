package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/NgigiN/fintrack/internal/assistant"
	"github.com/NgigiN/fintrack/internal/config"
	"github.com/NgigiN/fintrack/internal/logging"
	"github.com/NgigiN/fintrack/internal/storage"
	"github.com/NgigiN/fintrack/internal/store"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// globals holds options shared by every command.
type globals struct {
	EnvFile string `name:"env-file" default:".env" help:"Environment file to load before reading the configuration."`
}

var cli struct {
	Globals globals `embed:""`

	Bot     botCmd     `cmd:"" help:"Run the Discord bot and the HTTP API."`
	Summary summaryCmd `cmd:"" help:"Print the summary of a month."`
	Tips    tipsCmd    `cmd:"" help:"Print budget tips for a month."`
	Ask     askCmd     `cmd:"" help:"Ask the assistant a question."`
	Export  exportCmd  `cmd:"" help:"Export all transactions."`
}

// app is the wiring every command starts from.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *storage.Database
	store *store.Store
}

func setup(ctx context.Context, g *globals) (*app, error) {
	if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Error loading %s file: %w", g.EnvFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("Failed to load configuration: %w", err)
	}

	log, err := logging.New(cfg.LogDevelopment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("Failed to build logger: %w", err)
	}

	db, err := storage.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize the database: %w", err)
	}

	s := store.New(db, log.Named("store"))
	if err := s.Login(ctx, cfg.UserID, cfg.UserName); err != nil {
		db.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db, store: s}, nil
}

func (a *app) close() {
	a.store.Logout()
	if err := a.db.Close(); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// assistant builds the model chain: every configured Gemini model in order,
// then the OpenAI-compatible backend. With no credentials it runs offline.
func (a *app) assistant(ctx context.Context) (*assistant.Assistant, error) {
	var backends []assistant.Backend
	if a.cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiBackends(ctx, a.cfg.GeminiAPIKey, a.cfg.AIModels)
		if err != nil {
			return nil, err
		}
		backends = append(backends, gemini...)
	}
	if a.cfg.OpenAIAPIKey != "" {
		backends = append(backends, assistant.NewOpenAI(a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel))
	}
	if a.cfg.Offline() {
		a.log.Warn("no model credentials configured, assistant runs offline")
	}
	return assistant.New(backends, a.log.Named("assistant")), nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("fintrack"),
		kong.Description("Personal finance tracker with an AI assistant."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
