package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prabalesh/aideck/internal/api"
	"github.com/prabalesh/aideck/internal/config"
	"github.com/prabalesh/aideck/internal/logging"
	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/store"
	"github.com/prabalesh/aideck/internal/telemetry"
	"github.com/prabalesh/aideck/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML settings file")
	route := flag.String("route", "", "screen to open: / /models /system /settings")
	flag.Parse()

	if err := run(*configPath, *route); err != nil {
		log.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}

func run(configPath, route string) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return err
	}
	if route != "" {
		cfg.StartRoute = route
	}

	// The terminal belongs to the UI, so logs go to a file.
	logger := logging.Discard()
	if cfg.Logging.File != "" {
		f, err := tea.LogToFile(cfg.Logging.File, "aideck")
		if err != nil {
			return err
		}
		defer f.Close()
		logger = logging.New(f, cfg.Logging)
	}
	slog.SetDefault(logger)

	streamURL, err := telemetry.StreamURL(cfg.BackendURL)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	app := ui.NewApp(ui.Deps{
		API:             client,
		StreamURL:       streamURL,
		Logger:          logger,
		PollInterval:    cfg.PollInterval,
		NotificationTTL: cfg.NotificationTTL,
		ChartWindow:     cfg.ChartWindow,
		Models:          store.New[[]models.Model](),
		Config:          store.New[models.Config](),
	}, cfg.StartRoute)
	defer app.Shutdown()

	logger.Info("starting dashboard", "backend", client.BaseURL(), "route", cfg.StartRoute)

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
