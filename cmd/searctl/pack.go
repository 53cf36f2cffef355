package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Mainframe-Renewal-Project/sear/internal/capture"
)

func newPackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pack IN OUT",
		Short: "Store a result buffer as a capture (OUT ending in .zst is compressed)",
		Long: `Copy a raw result buffer into a capture file. IN may be "-" for stdin.
Captures ending in .zst are written zstd-compressed; decode and replay read
both forms.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := capture.WriteFile(args[1], data); err != nil {
				return err
			}
			log.Info().Str("out", args[1]).Int("bytes", len(data)).Msg("capture written")
			return nil
		},
	}
}
