// Package main is the entry point for the healthdash TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/averlow/healthdash/internal/app"
	"github.com/averlow/healthdash/internal/config"
	"github.com/averlow/healthdash/internal/services"
	"github.com/averlow/healthdash/internal/ui/tabs/dashboard"
	"github.com/averlow/healthdash/internal/ui/tabs/history"
	"github.com/averlow/healthdash/internal/ui/tabs/info"
	"github.com/averlow/healthdash/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
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

	// 2. Initialize the service manager
	// This opens the store and wires the provider, feed and indicator engine
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state),           // Tab 0: Dashboard - indicators and chart
		history.New(state, svcManager), // Tab 1: History - daily records
		info.New(state, cfg),           // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 7. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 8. Run the TUI program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`healthdash - Personal health and food spend dashboard

Usage:
  healthdash [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  s, r            Sync now
  e               Export JSON snapshot
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATABASE_PATH          SQLite database path
  HEALTH_ENDPOINT        Health export REST endpoint (required)
  SPEND_FEED_URL         Spend feed CSV path or URL (required)
  EXPORT_PATH            JSON snapshot output path
  GOAL_WEIGHT            Goal weight in lbs (default: 200)
  ACTIVE_STEP_THRESHOLD  Steps needed for an active day (default: 8000)
  SYNC_ON_START          Run a sync at startup (default: true)
  SYNC_TIMEOUT           Per-sync timeout (default: 2m)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/healthdash/.env

For more information, visit: https://github.com/averlow/healthdash`)
}
