package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asoos/internal/app"
	"asoos/internal/config"
	"asoos/internal/logging"
	"asoos/internal/tui"
)

var version = "dev"

var (
	configPath string
	verbose    bool
	plain      bool
)

var rootCmd = &cobra.Command{
	Use:   "asoos [command...]",
	Short: "Interactive command shell with saved workflows",
	Long: `asoos runs commands, remembers the session history and saves it as named
workflows that can be restored later.

With arguments, the arguments are run as a single command line and asoos exits.
Without arguments, an interactive prompt starts.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search asoos.yaml, ~/.config/asoos/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "line-oriented prompt instead of the full-screen interface")
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "asoos: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, foundPath, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Path, verbose)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, app.Options{Config: cfg, Logger: logger, Version: version})
	if err != nil {
		_ = logger.Sync()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	if len(args) > 0 {
		if out := a.Dispatch(ctx, strings.Join(args, " ")); out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	}

	if plain || !isatty.IsTerminal(os.Stdin.Fd()) {
		return tui.RunPlain(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Prompt)
	}
	return runInteractive(ctx, a, cfg, foundPath, logger)
}

// runInteractive starts the full-screen interface, reloading theme and prompt
// when the config file changes.
func runInteractive(ctx context.Context, a *app.Context, cfg *config.Config, path string, logger *zap.Logger) error {
	var updates <-chan *config.Config
	if path != "" {
		watcher, err := config.NewWatcher(path, cfg)
		if err != nil {
			logger.Warn("config watch disabled", zap.String("path", path), zap.Error(err))
		} else {
			watcher.Start()
			defer watcher.Stop()
			updates = watcher.Updates
			go logWatchErrors(ctx, watcher.Errors, logger)
		}
	}

	model := tui.NewModel(tui.Options{
		Backend: a,
		Theme:   cfg.Theme,
		Prompt:  cfg.Prompt,
		Updates: updates,
		Context: ctx,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

func logWatchErrors(ctx context.Context, errs <-chan error, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			logger.Warn("config reload", zap.Error(err))
		}
	}
}
