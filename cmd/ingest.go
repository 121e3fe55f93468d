package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/errs"
	"github.com/Savit10/streamsense/internal/infrastructure/stream"
	"github.com/Savit10/streamsense/internal/usecase/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the streaming ingest loop",
	Long:  "Consumes interaction events from Kafka and folds them into per-user feature aggregates. Runs until interrupted; in-flight transactions complete before exit.",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runIngestLoop(ctx, deps); err != nil {
			return errs.Wrap(err, "run ingest loop")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// runIngestLoop wires a Kafka source to a fresh loop and consumes until ctx
// is canceled. Shared by `ingest` and `serve --ingest`.
func runIngestLoop(ctx context.Context, deps appDeps) error {
	cfg := deps.App.Config

	dialects, err := ingest.LoadDialects(cfg.Ingest.DialectsFile)
	if err != nil {
		return errs.Wrap(err, "load payload dialects")
	}

	source := stream.NewKafkaSource(cfg.Kafka)
	defer func() {
		if err := source.Close(); err != nil {
			logging.Warn(ctx, "close kafka source failed", slog.Any("err", errs.Loggable(err)))
		}
	}()

	loop := ingest.NewLoop(
		source,
		ingest.NewParser(dialects),
		deps.Repo,
		deps.UoW,
		deps.Cache,
		deps.Values,
		ingest.LoopConfig{
			PollTimeout:   cfg.Ingest.PollTimeout,
			CommitRetries: cfg.Ingest.CommitRetries,
			RetryBackoff:  cfg.Ingest.RetryBackoff,
		},
	)

	return loop.Run(ctx)
}
