package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Mainframe-Renewal-Project/sear/internal/config"
	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
	"github.com/Mainframe-Renewal-Project/sear/internal/logging"
	"github.com/Mainframe-Renewal-Project/sear/internal/observability"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	format     string
	keymapDir  string
	metrics    bool

	cfg  config.Config
	keys *keymap.Registry
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "searctl",
		Short:         "Decode RACF extract results",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `searctl post-processes R_admin extract result buffers into JSON, YAML or
CBOR documents.

Available subcommands:
  decode  - decode a captured result buffer
  replay  - run requests against a capture manifest
  traits  - list the key mapping of an admin type
  pack    - store a result buffer as a (compressed) capture
  config  - write or validate a searctl.toml`,
		PersistentPreRunE:  a.prepare,
		PersistentPostRunE: a.finish,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to searctl.toml")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace|debug|info|warn|error|disabled)")
	flags.StringVarP(&a.format, "output", "o", "", "output format (json|yaml|cbor)")
	flags.StringVar(&a.keymapDir, "keymap-dir", "", "directory of key mapping tables overriding the embedded ones")
	flags.BoolVar(&a.metrics, "metrics", false, "print decode metrics to stderr on exit")

	root.AddCommand(
		newDecodeCmd(a),
		newReplayCmd(a),
		newTraitsCmd(a),
		newPackCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("output") {
		cfg.OutputFormat = a.format
	}
	if flags.Changed("keymap-dir") {
		cfg.KeymapDir = a.keymapDir
	}
	if flags.Changed("metrics") {
		cfg.Metrics = a.metrics
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	logging.ConfigureRuntime()
	if flags.Changed("log-level") || os.Getenv(logging.EnvLogLevel) == "" {
		logging.SetLevel(cfg.LogLevel)
	}
	observability.InitLoggerTo(a.errOut, "searctl")
	if cfg.Metrics {
		observability.RegisterMetrics()
	}
	log.Debug().Str("config", a.configPath).Str("format", cfg.OutputFormat).Msg("searctl configured")
	return nil
}

func (a *app) finish(*cobra.Command, []string) error {
	if !a.cfg.Metrics {
		return nil
	}
	families, err := observability.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.errOut, mf); err != nil {
			return err
		}
	}
	return nil
}

// registry loads the key tables once per invocation.
func (a *app) registry() (*keymap.Registry, error) {
	if a.keys != nil {
		return a.keys, nil
	}
	if dir := strings.TrimSpace(a.cfg.KeymapDir); dir != "" {
		keys, err := keymap.LoadFS(os.DirFS(dir))
		if err != nil {
			return nil, err
		}
		a.keys = keys
		return keys, nil
	}
	a.keys = keymap.Default()
	return a.keys, nil
}

func (a *app) emit(v any) error {
	format, err := document.ParseFormat(a.cfg.OutputFormat)
	if err != nil {
		return err
	}
	return document.Encode(a.out, v, format)
}

func adminTypeFlag(cmd *cobra.Command) (keymap.AdminType, error) {
	raw, err := cmd.Flags().GetString("admin-type")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("--admin-type is required (one of %s)", adminTypeList())
	}
	return keymap.ParseAdminType(raw)
}

func adminTypeList() string {
	names := make([]string, 0, len(keymap.AdminTypes))
	for _, at := range keymap.AdminTypes {
		names = append(names, string(at))
	}
	return strings.Join(names, ", ")
}
