package cli

import (
	"fmt"

	"github.com/dalemusser/stratadash/internal/autocomplete"
	"github.com/dalemusser/stratadash/internal/client"
	"github.com/spf13/cobra"
)

func newCoursesCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "courses [PREFIX]",
		Short: "Print course autocomplete candidates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.debug)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			set := autocomplete.NewSet()
			set.Limit = limit
			loader := &autocomplete.Loader{
				Fetcher: client.New(opts.baseURL, opts.apiKey),
				Sink:    set,
				Logger:  logger,
			}
			if err := loader.Load(cmd.Context()); err != nil {
				return fmt.Errorf("loading courses: %w", err)
			}

			items := set.Items()
			if len(args) == 1 {
				items = set.Suggest(args[0])
			}
			out := cmd.OutOrStdout()
			for _, s := range items {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", autocomplete.DefaultLimit, "Maximum suggestions for a prefix (0 for all)")
	return cmd
}
