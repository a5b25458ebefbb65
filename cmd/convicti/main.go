// Package main is the entry point for the CONVICTI dashboard TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/app"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/config"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/services"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/login"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/tabs/dashboard"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/tabs/history"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/ui/tabs/info"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file next to the
	// snapshot database instead of stderr.
	logPath := filepath.Join(filepath.Dir(cfg.DatabasePath), "convicti.log")
	if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
		logger.SetOutput(logFile)
		defer func() { _ = logFile.Close() }()
	}

	// 2. Initialize the service manager: auth, API client, stats poller
	// and the snapshot database
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Wire the login screen and tabs against the shared state
	state := model.GetState()
	model.SetLoginScreen(login.New())
	model.SetTabs([]app.Tab{
		dashboard.New(state), // Tab 0: Dashboard - current statistics
		history.New(state),   // Tab 1: History - recorded snapshots
		info.New(state, cfg), // Tab 2: Info - session and configuration
	})

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`CONVICTI Dashboard TUI - mobile app statistics monitor

Usage:
  convicti [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll
  Enter           Select/confirm
  r               Refresh statistics
  Ctrl+L          Sign out
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  API_BASE_URL            CONVICTI API base URL
  API_AUTH_URL            OAuth token endpoint URL
  CLIENT_ID               OAuth client ID
  CLIENT_SECRET           OAuth client secret
  SESSION_PATH            Session JSON file path
  DATABASE_PATH           SQLite snapshot database path
  STATS_REFRESH_INTERVAL  Stats polling interval (default: 60s)
  LOG_LEVEL               Log level: debug, info, warn, error (default: info)

Logs are written to convicti.log next to the snapshot database.

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/convicti/.env
  - ~/.convicti/.env`)
}
