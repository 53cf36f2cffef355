package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/Mainframe-Renewal-Project/sear/internal/capture"
	"github.com/Mainframe-Renewal-Project/sear/internal/config"
	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/extract"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
	"github.com/Mainframe-Renewal-Project/sear/internal/racf"
)

func newReplayCmd(a *app) *cobra.Command {
	var manifestPath, batchPath string
	cmd := &cobra.Command{
		Use:   "replay [--manifest M] (REQUEST.jsonc | --batch BATCH.toml)",
		Short: "Run requests against captured responses",
		Long: `Run extract and search requests through the full request pipeline,
answering native calls from a capture manifest.

A request file holds one JSON object or an array of them and may contain
comments:

  // extract one user
  {"admin_type": "user", "profile_name": "IBMUSER"}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestPath == "" {
				manifestPath = a.cfg.CaptureManifest
			}
			if manifestPath == "" {
				return fmt.Errorf("--manifest or capture_manifest is required")
			}
			reqs, limit, err := loadRequests(args, batchPath, a.cfg.BatchLimit)
			if err != nil {
				return err
			}
			manifest, err := capture.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			keys, err := a.registry()
			if err != nil {
				return err
			}
			svc := racf.NewService(capture.NewReplayer(manifest), extract.NewDecoder(keys))

			results := svc.DoAll(cmd.Context(), reqs, limit)
			if err := a.emitResults(results); err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.ReturnCodes.SEARReturnCode != racf.SEAROK {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d request(s) failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "capture manifest (defaults to capture_manifest)")
	cmd.Flags().StringVar(&batchPath, "batch", "", "TOML batch file of requests")
	return cmd
}

func loadRequests(args []string, batchPath string, limit int) ([]racf.Request, int, error) {
	switch {
	case batchPath != "" && len(args) > 0:
		return nil, 0, fmt.Errorf("use either a request file or --batch, not both")
	case batchPath != "":
		batch, err := config.LoadBatchConfig(batchPath)
		if err != nil {
			return nil, 0, err
		}
		if batch.Limit > 0 {
			limit = batch.Limit
		}
		reqs := make([]racf.Request, 0, len(batch.Requests))
		for _, r := range batch.Requests {
			reqs = append(reqs, racf.Request{
				Operation:   racf.Operation(r.Operation),
				AdminType:   keymap.AdminType(r.AdminType),
				ProfileName: r.ProfileName,
				ClassName:   r.ClassName,
				Group:       r.Group,
				Volume:      r.Volume,
				Generic:     r.Generic,
				Filter:      r.Filter,
			})
		}
		return reqs, limit, nil
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, 0, fmt.Errorf("read request file: %w", err)
		}
		reqs, err := parseRequests(data)
		if err != nil {
			return nil, 0, fmt.Errorf("parse %s: %w", args[0], err)
		}
		return reqs, limit, nil
	default:
		return nil, 0, fmt.Errorf("a request file or --batch is required")
	}
}

// parseRequests accepts one request object or an array, with comments.
func parseRequests(data []byte) ([]racf.Request, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(stripped) == 0 {
		return nil, fmt.Errorf("empty request file")
	}
	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(stripped))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}
	if stripped[0] == '[' {
		var reqs []racf.Request
		if err := dec(&reqs); err != nil {
			return nil, err
		}
		if len(reqs) == 0 {
			return nil, fmt.Errorf("no requests")
		}
		return reqs, nil
	}
	var req racf.Request
	if err := dec(&req); err != nil {
		return nil, err
	}
	return []racf.Request{req}, nil
}

func (a *app) emitResults(results []racf.Result) error {
	if len(results) == 1 {
		return a.emit(results[0].Object())
	}
	list := make([]*document.Object, 0, len(results))
	for _, r := range results {
		list = append(list, r.Object())
	}
	out := document.NewObject()
	out.Set("results", list)
	return a.emit(out)
}
