// Command overhead shows the aircraft currently overhead an observer as an
// animated split-flap board in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unklstewy/overhead/internal/app"
	"github.com/unklstewy/overhead/pkg/config"
	"github.com/unklstewy/overhead/pkg/coordinates"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	lat := flag.Float64("lat", 0, "Observer latitude (default from config)")
	lon := flag.Float64("lon", 0, "Observer longitude (default from config)")
	logPath := flag.String("log", "overhead.log", "Log file (empty to discard logs)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	observer := coordinates.Geographic{
		Latitude:  cfg.Observer.Latitude,
		Longitude: cfg.Observer.Longitude,
	}
	if *lat != 0 || *lon != 0 {
		observer = coordinates.Geographic{Latitude: *lat, Longitude: *lon}
	}
	if !observer.Valid() {
		log.Fatalf("Missing lat or lon: pass -lat and -lon or set observer in %s", *configPath)
	}

	// The alternate screen owns stdout, so logs go to a file.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := app.NewLogger(cfg.Logging, logOut)

	svc, source, err := app.NewService(cfg, logger, nil)
	if err != nil {
		log.Fatalf("Failed to create feed client: %v", err)
	}
	defer source.Close()

	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}
	board, scheduler := app.NewTicker(cfg.Ticker, svc, logger, notify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := scheduler.Start(ctx, observer); err != nil {
		log.Fatalf("Failed to start polling: %v", err)
	}
	defer scheduler.Stop()

	p := tea.NewProgram(newModel(board, scheduler, observer, changes), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		scheduler.Stop()
		os.Exit(1)
	}
}
