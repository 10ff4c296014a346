package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/investment-calculator/internal/calculator"
	"github.com/iwvelando/investment-calculator/internal/config"
	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/pkg/adapters"
	"github.com/iwvelando/investment-calculator/pkg/constants"
	"github.com/iwvelando/investment-calculator/pkg/output"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultEnvFile = ".env"

// rootOptions holds the global flags.
type rootOptions struct {
	configPath   string
	envFile      string
	logLevel     string
	outputFormat string
	out          string
	model        string
	set          []string
}

// session is the resolved configuration and logger of one command run.
type session struct {
	conf   *config.Configuration
	logger *zap.Logger
	calc   *calculator.Calculator
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "invest-calc",
		Short:         "Project investment returns year by year",
		Long:          "invest-calc projects a basic yield-compounding investment or a financed asset\nyear by year and renders the result as a table, CSV export or PDF report.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	pf.StringVar(&opts.envFile, "env-file", defaultEnvFile, "dotenv file loaded before the configuration")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.model, "model", "", "projection model override (basic, advanced)")
	pf.StringArrayVar(&opts.set, "set", nil, "parameter override as key=value, repeatable")
	pf.StringVarP(&opts.out, "out", "o", "", "output file, - for stdout")

	project := newProjectCommand(opts)
	project.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		project,
		newReportCommand(opts),
		newExportCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

// loadEnv loads the dotenv file. A missing default file is not an error.
func loadEnv(cmd *cobra.Command, path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// open resolves flags, environment and configuration into a session.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	if err := loadEnv(cmd, o.envFile); err != nil {
		return nil, err
	}

	var (
		conf *config.Configuration
		err  error
	)
	if _, statErr := os.Stat(o.configPath); statErr != nil && !cmd.Flags().Changed("config") {
		conf, err = config.Default()
	} else {
		conf, err = config.LoadConfiguration(o.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	if o.model != "" {
		conf.Model = strings.ToLower(strings.TrimSpace(o.model))
	}
	if o.outputFormat != "" {
		conf.Output.Format = o.outputFormat
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	for _, assignment := range o.set {
		if err := conf.SetParameter(assignment); err != nil {
			return nil, err
		}
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calc, err := calculator.FromConfig(logger, conf.Report, conf.MaxYears, nil)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &session{conf: conf, logger: logger, calc: calc}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func (s *session) project() (*projection.Result, error) {
	model, rec, err := s.conf.Record()
	if err != nil {
		return nil, err
	}
	return s.calc.Project(model, rec)
}

func (s *session) request() (calculator.Request, error) {
	model, rec, err := s.conf.Record()
	if err != nil {
		return calculator.Request{}, err
	}
	return calculator.Request{Model: model, Params: rec, Title: s.conf.Report.Title}, nil
}

// writeOutput writes data to path, or to the command's stdout for "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newProjectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Compute the projection and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			result, err := s.project()
			if err != nil {
				return err
			}

			out := opts.out
			if out == "" {
				out = "-"
			}
			data, err := s.render(result)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, data)
		},
	}
}

// render formats result in the configured output format.
func (s *session) render(result *projection.Result) ([]byte, error) {
	var b strings.Builder
	switch s.conf.Output.Format {
	case constants.OutputFormatCSV:
		return s.calc.CSV(result)
	case constants.OutputFormatJSON:
		res := output.NewJSONResult(s.conf.Report.Title, result)
		res.Warnings = s.conf.ValidateConfiguration()
		if err := output.JSONFormat(&b, res); err != nil {
			return nil, err
		}
	default:
		err := output.PrettyFormat(&b, s.conf.Report.Title, s.calc.Entries(result), result.Table(), adapters.FormatOptions(s.conf.Report))
		if err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Render the projection as a PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			req, err := s.request()
			if err != nil {
				return err
			}
			result, err := s.calc.Report(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := opts.out
			if out == "" {
				out = result.Filename
			}
			if err := writeOutput(cmd, out, result.Bytes); err != nil {
				return err
			}
			s.logger.Info("report written",
				zap.String("op", "main.report"),
				zap.String("path", out),
				zap.Int("pages", result.Document.PageCount()),
				zap.Strings("warnings", result.Warnings),
			)
			return nil
		},
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the projection table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			req, err := s.request()
			if err != nil {
				return err
			}
			data, _, err := s.calc.Export(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := opts.out
			if out == "" {
				out = constants.ExportFilename
			}
			return writeOutput(cmd, out, data)
		},
	}
}
