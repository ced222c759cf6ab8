package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/favtasks/internal/api"
	"github.com/tgienger/favtasks/internal/config"
	"github.com/tgienger/favtasks/internal/db"
	"github.com/tgienger/favtasks/internal/logging"
	"github.com/tgienger/favtasks/internal/repository"
	"github.com/tgienger/favtasks/internal/storage"
	"github.com/tgienger/favtasks/internal/ui"
	"github.com/tgienger/favtasks/internal/ui/styles"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	memory := flag.Bool("memory", false, "keep data in memory only")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("favtasks %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(*configPath, *memory); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, memory bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	styles.Use(cfg.Theme)

	opts := logging.DefaultOptions()
	opts.Level = cfg.LogLevel
	logger, logFile, err := logging.OpenFile(cfg.LogFile, opts)
	if err != nil {
		return err
	}
	defer logFile.Close()

	dbPath := cfg.DBPath
	if memory {
		dbPath = ":memory:"
	}
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	client, err := api.New(cfg.BaseURL, logger, api.WithTimeout(cfg.Timeout.Duration))
	if err != nil {
		return err
	}

	store := storage.New(database, logger)
	repo := repository.New(store, client, logger)

	logger.Info("starting", "version", version, "config", cfg.Path, "db", dbPath)

	app := ui.NewApp(repo, client, cfg.PostLimit)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
