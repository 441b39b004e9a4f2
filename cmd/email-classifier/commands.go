package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/di"
	"github.com/mikey/email-classifier/internal/metrics"
	"github.com/mikey/email-classifier/internal/report"
)

const actionReportSubject = "Emails requiring action"

// containerBuilder is swapped in tests
type containerBuilder func(opts di.Options) (*dig.Container, error)

func newRootCmd() *cobra.Command {
	return newRootCmdWithBuilder(di.BuildContainer)
}

func newRootCmdWithBuilder(build containerBuilder) *cobra.Command {
	var opts di.Options

	root := &cobra.Command{
		Use:           "email-classifier",
		Short:         "Classify recent emails with a local language model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to config file")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newFetchCmd(&opts, build),
		newClassifyCmd(&opts, build),
		newPlotCmd(&opts, build),
	)
	return root
}

func newFetchCmd(opts *di.Options, build containerBuilder) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch recent emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return invoke(build, *opts, func(
				cfg *config.Config,
				logger *zap.Logger,
				p *core.Pipeline,
				cache core.CacheRepository,
			) error {
				defer logger.Sync()
				defer cache.Close()

				emails, err := p.Fetch(cmd.Context(), resolveLimit(limit, cfg))
				if err != nil {
					return err
				}
				logger.Info("Fetched emails", zap.Int("count", len(emails)))

				out := cmd.OutOrStdout()
				for _, e := range emails {
					fmt.Fprintln(out, e)
				}
				fmt.Fprintf(out, "Fetched %d emails.\n", len(emails))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of emails to fetch (default mail.limit)")
	return cmd
}

func newClassifyCmd(opts *di.Options, build containerBuilder) *cobra.Command {
	var (
		limit  int
		mailTo []string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify recent emails and list those requiring action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return invoke(build, *opts, func(
				cfg *config.Config,
				logger *zap.Logger,
				p *core.Pipeline,
				cache core.CacheRepository,
				m *metrics.Metrics,
				mailer *report.Mailer,
			) error {
				defer logger.Sync()
				defer cache.Close()

				if len(mailTo) > 0 && !cfg.GetSMTP().Enabled {
					return errors.New("--mail-to requires report.smtp.enabled")
				}

				ctx := cmd.Context()
				emails, err := p.Fetch(ctx, resolveLimit(limit, cfg))
				if err != nil {
					return err
				}
				logger.Info("Fetched emails", zap.Int("count", len(emails)))

				p.SetProgressOutput(cmd.ErrOrStderr())
				if err := p.Classify(ctx, emails); err != nil {
					return err
				}

				summary := core.Summarize(emails)
				out := cmd.OutOrStdout()
				if err := report.PrintActionList(out, summary.ActionRequired); err != nil {
					return err
				}
				fmt.Fprintln(out)
				if err := report.PrintSummary(out, summary); err != nil {
					return err
				}

				if len(mailTo) > 0 {
					if err := mailer.Send(ctx, mailTo, actionReportSubject, report.FormatActionList(summary.ActionRequired)); err != nil {
						return fmt.Errorf("failed to mail report: %w", err)
					}
					logger.Info("Mailed action report", zap.String("to", strings.Join(mailTo, ", ")))
				}

				writeMetrics(cfg, m, logger)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of emails to classify (default mail.limit)")
	cmd.Flags().StringSliceVar(&mailTo, "mail-to", nil, "mail the action list to these addresses")
	return cmd
}

func newPlotCmd(opts *di.Options, build containerBuilder) *cobra.Command {
	var (
		limit    int
		savePath string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot the category distribution of recent emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return invoke(build, *opts, func(
				cfg *config.Config,
				logger *zap.Logger,
				p *core.Pipeline,
				cache core.CacheRepository,
				m *metrics.Metrics,
				plotter *report.Plotter,
			) error {
				defer logger.Sync()
				defer cache.Close()

				ctx := cmd.Context()
				emails, err := p.Fetch(ctx, resolveLimit(limit, cfg))
				if err != nil {
					return err
				}

				p.SetProgressOutput(cmd.ErrOrStderr())
				if err := p.Classify(ctx, emails, core.TaskCategory); err != nil {
					return err
				}

				if _, err := plotter.Plot(core.GroupByCategory(emails).Counts(), savePath); err != nil {
					return err
				}
				if savePath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Plot saved to %s\n", savePath)
				}

				writeMetrics(cfg, m, logger)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of emails to classify (default mail.limit)")
	cmd.Flags().StringVar(&savePath, "save-path", "", "write the chart to this PNG file instead of showing it")
	return cmd
}

// invoke builds the container and runs fn with its dependencies injected
func invoke(build containerBuilder, opts di.Options, fn interface{}) error {
	container, err := build(opts)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(fn)
}

func resolveLimit(limit int, cfg *config.Config) int {
	if limit > 0 {
		return limit
	}
	return cfg.GetMail().Limit
}

func writeMetrics(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) {
	path := cfg.GetString("metrics.textfile")
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logger.Warn("Failed to write metrics textfile", zap.String("path", path), zap.Error(err))
	}
}
