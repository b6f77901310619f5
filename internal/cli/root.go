package cli

import (
	"github.com/spf13/cobra"

	"github.com/cruffinoni/errgen/internal/config"
	"github.com/cruffinoni/errgen/internal/logging"
)

// NewRootCmd wires CLI flags to configuration and executes generation.
func NewRootCmd() *cobra.Command {
	flags := config.Default()
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "errgen",
		Short:         "Generate error-type companion code from //errgen: directives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.Configure(verbose)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &cfg, flags)
			return runGenerate(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&flags.In, "in", "", "Root directory containing annotated Go sources")
	cmd.Flags().StringVar(&flags.Glob, "glob", flags.Glob, "Glob pattern relative to --in (supports **)")
	cmd.Flags().StringVar(&flags.Suffix, "suffix", flags.Suffix, "Companion file suffix (example: _errgen)")
	cmd.Flags().BoolVar(&flags.Strict, "strict", flags.Strict, "Stop at the first failing file")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", flags.DryRun, "Validate and check without writing companions")
	cmd.Flags().StringVar(&flags.ReportJSON, "report-json", "", "Optional JSON report output path")
	cmd.Flags().StringVar(&flags.ReportCSV, "report-csv", "", "Optional CSV report output path")
	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML configuration file")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	return cmd
}

// applyFlagOverrides layers explicitly set flags over the file- and
// env-resolved configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, flags config.Config) {
	set := cmd.Flags().Changed
	if set("in") {
		cfg.In = flags.In
	}
	if set("glob") {
		cfg.Glob = flags.Glob
	}
	if set("suffix") {
		cfg.Suffix = flags.Suffix
	}
	if set("strict") {
		cfg.Strict = flags.Strict
	}
	if set("dry-run") {
		cfg.DryRun = flags.DryRun
	}
	if set("report-json") {
		cfg.ReportJSON = flags.ReportJSON
	}
	if set("report-csv") {
		cfg.ReportCSV = flags.ReportCSV
	}
}
