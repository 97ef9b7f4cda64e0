package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/logger"
	"github.com/navikt/meetingsview/internal/meetings"
	"github.com/navikt/meetingsview/internal/repository"
	"github.com/navikt/meetingsview/internal/service"
	"github.com/spf13/cobra"
)

// app holds the wired components shared by the commands
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
	repo      repository.Repository
	views     *service.ViewService
}

// loadConfig reads the config file and environment, then applies command line flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("meetings-url"); v != "" {
		cfg.Source.URL = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires logging, the view store, the meetings client and the view service.
// Console logs go to logOut.
func newApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, logCloser, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	repo, err := repository.NewRepository(cfg.Redis)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	client := meetings.NewClient(cfg.Source, log)
	log.Info("Meetings source configured",
		"url", logger.RedactURL(client.URL()),
		"timeout", cfg.Source.Timeout,
		"redis", cfg.Redis.Enabled,
	)

	return &app{
		cfg:       cfg,
		log:       log,
		logCloser: logCloser,
		repo:      repo,
		views:     service.NewViewService(client, repo, log),
	}, nil
}

// close releases the store connection and the log file
func (a *app) close() error {
	return errors.Join(a.repo.Close(), a.logCloser.Close())
}
