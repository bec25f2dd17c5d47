// SPDX-License-Identifier: MIT

// Command lfp imports longitudinal exposure cohorts, computes their feature
// products and stores the results.
//
//	lfp import --cohort trial --intervals 12 --features 40 --file exposures.csv
//	lfp transform --cohort trial --exposure infinite
//	lfp mapper --features 4
package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvlath-lfp/config"
)

var version = "dev"

// app carries the state shared by all sub-commands once the root pre-run has
// loaded the configuration.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	runID  string
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "lfp",
		Short:        "Longitudinal feature products for exposure cohorts",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(logOut)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config (default $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(importCmd(a), transformCmd(a), mapperCmd())

	return rootCmd
}

func (a *app) setup(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.runID = uuid.NewString()
	a.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})).
		With("run_id", a.runID)
	slog.SetDefault(a.logger)

	if cfg.Metrics.Addr != "" {
		serveMetrics(cfg.Metrics.Addr, a.logger)
	}

	return nil
}

// serveMetrics exposes the default Prometheus registry on addr/metrics for
// the lifetime of the process.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped", "error", err)
		}
	}()
}

func mapperCmd() *cobra.Command {
	var features int

	cmd := &cobra.Command{
		Use:     "mapper",
		Short:   "Print the output column of every feature and feature pair",
		Example: `  lfp mapper --features 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printMapper(cmd.OutOrStdout(), features)
		},
	}

	cmd.Flags().IntVar(&features, "features", 0, "Number of base features (>= 2)")
	_ = cmd.MarkFlagRequired("features")

	return cmd
}

func importCmd(a *app) *cobra.Command {
	var (
		cohort    string
		intervals int
		features  int
		subjects  int
		storage   string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a cohort from a CSV of subject,row,col,value cells",
		Example: `  lfp import --cohort trial --intervals 12 --features 40 --file exposures.csv
  cat exposures.csv | lfp import --cohort trial --intervals 12 --features 40 --subjects 500 --storage dense --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, importOptions{
				cohort:    cohort,
				intervals: intervals,
				features:  features,
				subjects:  subjects,
				storage:   storage,
				file:      file,
			})
		},
	}

	cmd.Flags().StringVar(&cohort, "cohort", "", "Cohort name")
	cmd.Flags().IntVar(&intervals, "intervals", 0, "Number of time intervals per subject")
	cmd.Flags().IntVar(&features, "features", 0, "Number of base features")
	cmd.Flags().IntVar(&subjects, "subjects", 0, "Number of subjects; 0 infers it from the largest subject id (< 65536)")
	cmd.Flags().StringVar(&storage, "storage", "sparse", "Subject storage form (sparse or dense)")
	cmd.Flags().StringVar(&file, "file", "-", "CSV file, - for stdin")
	for _, name := range []string{"cohort", "intervals", "features"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func transformCmd(a *app) *cobra.Command {
	var (
		cohort      string
		exposure    string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Compute feature products for a stored cohort and save them",
		Example: `  lfp transform --cohort trial
  lfp transform --cohort trial --exposure short --parallelism 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("exposure") {
				a.cfg.ExposureType = exposure
			}
			if cmd.Flags().Changed("parallelism") {
				a.cfg.Parallelism = parallelism
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			return a.runTransform(cmd, cohort)
		},
	}

	cmd.Flags().StringVar(&cohort, "cohort", "", "Cohort name")
	cmd.Flags().StringVar(&exposure, "exposure", "", "Override exposure type (short or infinite)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Override subject fan-out width (-1 for all CPUs)")
	_ = cmd.MarkFlagRequired("cohort")

	return cmd
}
