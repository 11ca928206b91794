package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sift/internal/config"
	"github.com/mmcdole/sift/internal/events"
	"github.com/mmcdole/sift/internal/log"
	"github.com/mmcdole/sift/internal/progress"
	"github.com/mmcdole/sift/internal/quota"
	"github.com/mmcdole/sift/internal/reconcile"
	"github.com/mmcdole/sift/internal/source"
	"github.com/mmcdole/sift/internal/store"
	"github.com/mmcdole/sift/internal/swipe"
	"github.com/mmcdole/sift/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var libraryRoot string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&libraryRoot, "library", "", "media library root (overrides config)")
	flag.Parse()

	if showVersion {
		fmt.Printf("sift %s\n", Version)
		return
	}

	if err := run(libraryRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(libraryRoot string) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if libraryRoot != "" {
		cfg.Library.Root = libraryRoot
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting sift", "version", Version)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("sift needs an interactive terminal")
	}

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	// Open the overlay database
	overlayStore, err := store.NewOverlayStore(cfg.Library.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open overlay store: %w", err)
	}
	defer overlayStore.Close()

	// Scan the library
	src, err := source.NewDirectorySource(cfg.Library.Root, logger)
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}

	// Create services
	bus := events.NewBus()
	svc := swipe.NewService(overlayStore, src, bus, logger)
	if cfg.Triage.FlushDelayMS > 0 {
		svc.SetFlushDelay(time.Duration(cfg.Triage.FlushDelayMS) * time.Millisecond)
	}

	cache := progress.NewCache(src, svc, bus, logger)
	if cfg.Progress.FreshnessSec > 0 {
		cache.SetFreshness(time.Duration(cfg.Progress.FreshnessSec) * time.Second)
	}
	if cfg.Progress.BatchSize > 0 {
		cache.SetBatchSize(cfg.Progress.BatchSize)
	}
	svc.SetInvalidator(cache)

	ledger := quota.NewLedger(overlayStore, cfg.Triage.DailyLimit, logger)

	reconciler := reconcile.NewReconciler(src, svc, cache, logger)

	// Deleting from trash removes the files under the library root.
	removeFiles := func(ids []string) error {
		for _, id := range ids {
			path := filepath.Join(cfg.Library.Root, filepath.FromSlash(id))
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", id, err)
			}
		}
		return nil
	}

	busCh, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Create TUI model
	model := tui.NewModel(svc, cache, src, ledger, src, reconciler, removeFiles, busCh)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	// Make sure pending triage decisions hit disk before exit.
	svc.Flush()

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when no library is configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to sift!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter the path to your photo library: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		root := strings.TrimSpace(input)

		if root == "" {
			fmt.Println("Library path cannot be empty. Please try again.")
			continue
		}
		if strings.HasPrefix(root, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			root = filepath.Join(home, root[1:])
		}

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			fmt.Printf("✗ %s is not a directory. Please try again.\n\n", root)
			continue
		}

		cfg.Library.Root = root
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run sift again to start triaging.")

	return nil
}
