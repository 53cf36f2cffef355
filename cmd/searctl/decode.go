package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Mainframe-Renewal-Project/sear/internal/capture"
	"github.com/Mainframe-Renewal-Project/sear/internal/extract"
	"github.com/Mainframe-Renewal-Project/sear/internal/observability"
)

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode --admin-type TYPE FILE",
		Short: "Decode a captured extract result buffer",
		Long: `Decode a raw R_admin extract result buffer. Files ending in .zst are
decompressed first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := adminTypeFlag(cmd)
			if err != nil {
				return err
			}
			keys, err := a.registry()
			if err != nil {
				return err
			}
			c, err := capture.Open(args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			start := time.Now()
			res, err := extract.NewDecoder(keys).Decode(at, c.Bytes())
			if err != nil {
				outcome := observability.ResultMalformed
				if errors.Is(err, extract.ErrInsufficientSpace) {
					outcome = observability.ResultInsufficient
				}
				observability.RecordDecode(string(at), outcome, c.Len(), time.Since(start))
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			observability.RecordDecode(string(at), observability.ResultOK, c.Len(), time.Since(start))
			observability.RecordExperimental(string(at), res.Stats.Experimental)
			log.Info().
				Str("file", args[0]).
				Str("admin_type", string(at)).
				Int("segments", res.Stats.Segments).
				Int("fields", res.Stats.Fields).
				Int("experimental", res.Stats.Experimental).
				Msg("decoded capture")
			return a.emit(res.Document)
		},
	}
	cmd.Flags().String("admin-type", "", "admin type of the capture ("+adminTypeList()+")")
	return cmd
}
