// Spellstacks — local asset server and dictionary builder for the daily word game.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/vesaa/spellstacks/internal/config"
	"github.com/vesaa/spellstacks/internal/merge"
	"github.com/vesaa/spellstacks/internal/server"
)

const version = "v0.1.0"

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(0, 2)

func printBanner(w io.Writer, port int, root string) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")).Render("Daily Word Game Server")
	body := fmt.Sprintf("%s\n\nServer running at: http://localhost:%d\nServing:           %s\nPress Ctrl+C to stop", title, port, root)
	fmt.Fprintln(w, bannerStyle.Render(body))
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// describeError turns a command error into an operator-facing message.
func describeError(err error) string {
	var inUse *server.PortInUseError
	if errors.As(err, &inUse) {
		return fmt.Sprintf("Error: %v.\nTry closing other servers or use a different port (--port).", inUse)
	}
	return fmt.Sprintf("Error: %v", err)
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "spellstacks",
		Short:         "Spellstacks — local asset server and dictionary builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./config.yaml or ~/.spellstacks/config.yaml)")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	// ── serve subcommand ──────────────────────────────────────────────────────
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game's static files with CORS and no-cache headers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// CLI flags override config values.
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("host") {
				cfg.ServerHost, _ = flags.GetString("host")
			}
			if flags.Changed("root") {
				cfg.RootDir, _ = flags.GetString("root")
			}
			if flags.Changed("embedded") {
				cfg.EmbeddedUI, _ = flags.GetBool("embedded")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = server.Serve(ctx, cfg, out, func(root string) {
				printBanner(out, cfg.Port, root)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nServer stopped.")
			return nil
		},
	}
	serveCmd.Flags().Int("port", 8000, "TCP port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Interface to bind")
	serveCmd.Flags().String("root", "", "Directory to serve (default: the directory containing this program)")
	serveCmd.Flags().Bool("embedded", false, "Serve the compiled-in skeleton UI instead of a directory")

	// ── merge subcommand ──────────────────────────────────────────────────────
	mergeCmd := &cobra.Command{
		Use:   "merge",
		Short: "Download public word lists and merge them into the dictionary file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("words") {
				cfg.WordsFile, _ = flags.GetString("words")
			}
			if flags.Changed("policy") {
				cfg.Merge.Policy, _ = flags.GetString("policy")
			}
			if flags.Changed("min-sources") {
				cfg.Merge.MinSources, _ = flags.GetInt("min-sources")
			}
			if flags.Changed("parallel") {
				cfg.Fetch.Parallelism, _ = flags.GetInt("parallel")
			}
			if flags.Changed("dry-run") {
				cfg.Merge.DryRun, _ = flags.GetBool("dry-run")
			}
			if flags.Changed("report") {
				cfg.Merge.ReportFile, _ = flags.GetString("report")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := merge.Run(ctx, cfg, cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Done!")
			return nil
		},
	}
	mergeCmd.Flags().String("words", "", "Dictionary file (default data/words.txt under the served root)")
	mergeCmd.Flags().String("policy", config.PolicyQuorum, "Inclusion policy: union or quorum")
	mergeCmd.Flags().Int("min-sources", 2, "Sources a word must appear in under the quorum policy")
	mergeCmd.Flags().Int("parallel", 1, "Maximum concurrent downloads")
	mergeCmd.Flags().Bool("dry-run", false, "Report what would change without writing the dictionary")
	mergeCmd.Flags().String("report", "", "Also write the merge report as YAML to this path")

	// ── version subcommand ────────────────────────────────────────────────────
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print Spellstacks version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Spellstacks %s\n", version)
		},
	}

	root.AddCommand(serveCmd, mergeCmd, versionCmd)
	return root
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
	}
	os.Exit(exitCode(err))
}
