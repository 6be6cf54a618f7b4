package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/config"
	"github.com/unclebandit/battery-reminder/internal/db"
	"github.com/unclebandit/battery-reminder/internal/repository"
	"github.com/unclebandit/battery-reminder/internal/service"
)

func main() {
	rootCmd := newRootCommand(openAnalytics)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// opener builds the analytics service and returns a function releasing its resources.
type opener func(ctx context.Context) (Analytics, func(), error)

func openAnalytics(ctx context.Context) (Analytics, func(), error) {
	conf, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(conf.Log)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.Open(ctx, conf.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	svc := &service.AnalyticsService{
		Store:  &repository.AnalyticsRepository{DB: sqlDB},
		Logger: logger,
	}
	closeFn := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return svc, closeFn, nil
}

func newRootCommand(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "analytics",
		Short:         "battery reminder campaign analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		analyticsCommand(open, "report", "print the full analytics report", func(ctx context.Context, cmd *cobra.Command, a Analytics) error {
			return writeReport(ctx, cmd.OutOrStdout(), a, time.Now())
		}),
		analyticsCommand(open, "campaigns", "dump campaign effectiveness as JSON", func(ctx context.Context, cmd *cobra.Command, a Analytics) error {
			rows, err := a.CampaignEffectiveness(ctx, "")
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		}),
		analyticsCommand(open, "trends", "dump weekly trends as JSON", func(ctx context.Context, cmd *cobra.Command, a Analytics) error {
			trends, err := a.WeeklyTrends(ctx, service.DefaultTrendWeeks)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), trends)
		}),
		analyticsCommand(open, "users", "dump user engagement statistics as JSON", func(ctx context.Context, cmd *cobra.Command, a Analytics) error {
			stats, err := a.UserEngagement(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		}),
	)
	return rootCmd
}

func analyticsCommand(open opener, use, short string, run func(ctx context.Context, cmd *cobra.Command, a Analytics) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			return run(ctx, cmd, a)
		},
	}
}
