//cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/config"
	"github.com/unclebandit/battery-reminder/internal/db"
)

// Seed files run in order after migrations; missing files are skipped.
var seedFiles = []string{
	"seed/lock_user_mapping.sql",
}

func main() {
	conf, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(conf.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	sqlDB, err := db.Open(ctx, conf.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := db.MigrateUp(sqlDB); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}
	logger.Info("migrations applied")

	files := seedFiles
	if len(os.Args) > 1 {
		files = os.Args[1:]
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if os.IsNotExist(err) {
			logger.Info("seed file not found, skipping", zap.String("file", file))
			continue
		}
		if err != nil {
			logger.Fatal("failed to read seed file", zap.String("file", file), zap.Error(err))
		}

		if _, err := sqlDB.ExecContext(ctx, string(content)); err != nil {
			logger.Fatal("failed to execute seed file", zap.String("file", file), zap.Error(err))
		}
		logger.Info("seeded", zap.String("file", file))
	}

	logger.Info("database seeding completed successfully")
}
