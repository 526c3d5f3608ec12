package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/runger/rpick/internal/config"
	rlog "github.com/runger/rpick/internal/log"
	"github.com/runger/rpick/internal/rpapi"
)

// session bundles what one picker run needs.
type session struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	client *rpapi.Client

	closeLog io.Closer
}

// configPath returns the --config file or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPaths().ConfigFile()
}

// loadConfig reads the config file, applies flag overrides and validates the
// server settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromFile(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if endpointFlag != "" {
		cfg.Server.Endpoint = endpointFlag
	}
	if projectFlag != "" {
		cfg.Server.Project = projectFlag
	}
	if debugFlag {
		cfg.Log.Level = "debug"
	}
	if err := cfg.RequireServer(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads config, opens the log file and builds the API client.
// Logging problems never stop a run; they fall back to a discard logger.
func openSession(source string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, paths: config.DefaultPaths()}
	s.logger = s.openLogger()

	client, err := rpapi.NewClient(rpapi.Options{
		Endpoint: cfg.Server.Endpoint,
		Project:  cfg.Server.Project,
		Token:    cfg.Server.Token,
		Timeout:  cfg.Server.Timeout(),
		Logger:   s.logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.client = client

	rlog.LogStartup(s.logger, rlog.StartupInfo{
		Version:    Version,
		Source:     source,
		Endpoint:   cfg.Server.Endpoint,
		Project:    cfg.Server.Project,
		ConfigPath: configPath(),
		PID:        os.Getpid(),
	})
	return s, nil
}

func (s *session) openLogger() *slog.Logger {
	level, err := rlog.ParseLevel(s.cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	path := s.cfg.Log.File
	if path == "" {
		path = s.paths.LogFile()
	}
	f, err := rlog.OpenFile(path)
	if err != nil {
		// The terminal belongs to the picker, so there is nowhere else to log.
		return rlog.Discard()
	}
	s.closeLog = f
	return rlog.New(&rlog.Config{Output: f, Level: level})
}

// Close releases the log file.
func (s *session) Close() {
	if s.closeLog != nil {
		_ = s.closeLog.Close()
		s.closeLog = nil
	}
}
