// Package main provides the CLI entrypoint for wordweave.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AHARH1ST777/wordweave/internal/config"
	"github.com/AHARH1ST777/wordweave/internal/model"
	"github.com/AHARH1ST777/wordweave/internal/session"
	"github.com/AHARH1ST777/wordweave/internal/stats"
	"github.com/AHARH1ST777/wordweave/internal/store"
	"github.com/AHARH1ST777/wordweave/internal/transport"
	"github.com/AHARH1ST777/wordweave/internal/tui"
)

const (
	defaultServer = "ws://localhost:8000"
	defaultLang   = "ru"
	defaultLast   = 15

	dialTimeout = 10 * time.Second
)

var (
	playServer string
	playLang   string

	statsLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordweave",
		Short:         "TUI client for the semantic word-guessing game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playServer, "server", defaultServer, "game server URL")
	rootCmd.Flags().StringVar(&playLang, "lang", defaultLang, "language of guesses")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &playServer, fileCfg.Game.Server)
	applyStringConfig(cmd, "lang", &playLang, fileCfg.Game.Lang)

	logger := newLogger()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	ctx := context.Background()
	ledger, err := stats.LoadLedger(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	timer, err := stats.LoadTimeAccumulator(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load time counter: %w", err)
	}

	clientID := "player_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	client, err := transport.Dial(dialCtx, playServer, clientID, logger)
	if err != nil {
		// The session stays usable offline; start requests surface the
		// missing connection as a transient message.
		logger.Warn().Err(err).Msg("starting without a server connection")
		client = transport.NewDisconnected(logger)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close connection")
		}
	}()

	clock := clockwork.NewRealClock()
	recorder := &gameRecorder{ledger: ledger, store: st, clock: clock}
	machine := session.New(clientID, playLang, client, recorder, clock, logger)

	ui := tui.NewModel(machine, ledger, timer, client.Messages(), logger)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// gameRecorder fans a finished game out to the aggregate ledger and the
// per-game history table.
type gameRecorder struct {
	ledger *stats.Ledger
	store  *store.Store
	clock  clockwork.Clock
}

func (r *gameRecorder) RecordResult(ctx context.Context, result model.GameResult) error {
	if err := r.ledger.Record(ctx, result); err != nil {
		return err
	}
	if _, err := r.store.InsertGame(ctx, r.clock.Now(), result); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", defaultLast, "number of recent games to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	ledger, err := stats.LoadLedger(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	timer, err := stats.LoadTimeAccumulator(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load time counter: %w", err)
	}
	games, err := st.ListGames(ctx, statsLast)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	width := 60
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return stats.RenderReport(cmd.OutOrStdout(), ledger.Snapshot(), timer.Seconds(), games, width)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wordweave configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# server = %q   # Game server URL
# lang = %q                      # Language of guesses
`,
		defaultServer,
		defaultLang,
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// newLogger writes to the data-dir log file; a TUI owns the terminal, so
// there is nowhere else to log.
func newLogger() zerolog.Logger {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop()
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(file).With().Timestamp().Logger()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
