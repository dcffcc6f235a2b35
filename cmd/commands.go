package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/skillquest-backend/internal/app"
	"github.com/yungbote/skillquest-backend/internal/jobs"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "skillquest",
	Short:         "SkillQuest learning platform API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return app.LoadDotEnv(envFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, realtime stream and scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		store, err := app.OpenDB(log, cfg)
		if err != nil {
			return err
		}
		log.Info("Schema migrated", "driver", store.Driver())
		return store.Close()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML catalog of paths, achievements and challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Services.Seed.LoadFile(ctx, file)
			if err != nil {
				return err
			}
			a.Log.Info(
				"Catalog seeded",
				"file", file,
				"paths", res.Paths,
				"modules", res.Modules,
				"lessons", res.Lessons,
				"achievements", res.Achievements,
				"challenges", res.Challenges,
			)
			return nil
		})
	},
}

var sweepTokensCmd = &cobra.Command{
	Use:   "sweep-tokens",
	Short: "Delete expired refresh tokens once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Scheduler.RunNow(ctx, jobs.TaskTokenSweep)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading configuration")
	seedCmd.Flags().StringP("file", "f", "catalog.yaml", "catalog file to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sweepTokensCmd)
}

func bootstrap() (*logger.Logger, app.Config, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	return log, app.LoadConfig(log), nil
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	log, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func runServe(cmd *cobra.Command) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		return a.Run(ctx)
	})
}
