package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/stratadash/internal/client"
	"github.com/dalemusser/stratadash/internal/editor"
	"github.com/spf13/cobra"
)

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a requirements file to HTML",
		Long:  "Render a requirements file to HTML through the server. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.debug)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			var src []byte
			if args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			ed := editor.New(client.New(opts.baseURL, opts.apiKey), string(src), logger)
			if err := ed.Toggle(cmd.Context()); err != nil {
				return fmt.Errorf("rendering preview: %w", err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), ed.State().PreviewHTML)
			return err
		},
	}
}
