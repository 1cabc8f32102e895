// Package cli implements the dashwatch command.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dalemusser/stratadash/internal/client"
	"github.com/dalemusser/stratadash/internal/dashboard"
	"github.com/dalemusser/stratadash/internal/dashboard/termview"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Environment variables used as flag defaults.
const (
	EnvBaseURL = "STRATADASH_BASE_URL"
	EnvAPIKey  = "STRATADASH_API_KEY"
)

const defaultBaseURL = "http://localhost:8080"

type options struct {
	baseURL   string
	apiKey    string
	timeframe string
	layout    string
	once      bool
	debug     bool
}

// NewRootCmd builds the dashwatch command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dashwatch",
		Short: "Watch the stratadash analytics dashboard from a terminal",
		Long: `dashwatch draws the analytics dashboard as text.

On a terminal, pick a time frame with the arrow keys and press enter;
q quits. With piped input, each line names a time frame, an empty line
refreshes and q quits.

Examples:
  dashwatch                              # Watch the last day
  dashwatch --timeframe year --once      # Print the last year and exit
  dashwatch --layout layout.yaml         # Track the metrics in layout.yaml
  dashwatch courses 6.                   # Autocomplete candidates for "6."
  dashwatch preview major.req            # Render a requirements file`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.baseURL, "base-url", envOr(EnvBaseURL, defaultBaseURL), "Server base URL")
	pf.StringVar(&opts.apiKey, "api-key", os.Getenv(EnvAPIKey), "Staff API key sent as a bearer token")
	pf.BoolVar(&opts.debug, "debug", false, "Development logging")

	f := root.Flags()
	f.StringVarP(&opts.timeframe, "timeframe", "t", dashboard.DefaultTimeframe, "Initial time frame")
	f.StringVar(&opts.layout, "layout", "", "YAML file listing the tracked metrics")
	f.BoolVar(&opts.once, "once", false, "Refresh once, print and exit")

	root.AddCommand(newCoursesCmd(opts))
	root.AddCommand(newPreviewCmd(opts))
	return root
}

// Execute runs the dashwatch command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runWatch(cmd *cobra.Command, opts *options) error {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	layout := dashboard.DefaultLayout()
	if opts.layout != "" {
		layout, err = dashboard.LoadLayout(opts.layout)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	view := termview.ForLayout(out, layout)
	refresher := dashboard.New(client.New(opts.baseURL, opts.apiKey), view, layout.Metrics, dashboard.Options{
		BasePath: layout.BasePath,
		Logger:   logger,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	draw := func(timeframe string) error {
		// failures are logged by the refresher and leave widgets as they were
		_ = refresher.Refresh(ctx, timeframe).Wait()
		fmt.Fprintf(out, "-- %s --\n", timeframe)
		return view.Render()
	}

	timeframe := opts.timeframe
	if !opts.once && interactive(cmd.InOrStdin(), out) {
		model := newWatchModel(timeframe, func(tf string) string {
			_ = refresher.Refresh(ctx, tf).Wait()
			return view.String()
		})
		_, err := tea.NewProgram(model,
			tea.WithContext(ctx),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(out),
			tea.WithAltScreen(),
		).Run()
		return err
	}

	if err := draw(timeframe); err != nil {
		return err
	}
	if opts.once {
		return nil
	}
	return readTimeframes(cmd.InOrStdin(), func(line string) error {
		if line != "" {
			timeframe = line
		}
		return draw(timeframe)
	})
}

// interactive reports whether both ends are terminals, which the selector
// needs. Piped input is read line by line instead.
func interactive(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok {
		return false
	}
	fout, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(fin.Fd()) && isatty.IsTerminal(fout.Fd())
}

// readTimeframes calls fn for each input line until EOF or "q".
func readTimeframes(in io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
