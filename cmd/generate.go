package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/errs"
	"github.com/Savit10/streamsense/internal/infrastructure/stream"
	"github.com/Savit10/streamsense/internal/usecase/simulate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Produce synthetic interaction events to Kafka",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := deps.App.Config.Generator
		if count, _ := cmd.Flags().GetInt("count"); count > 0 {
			cfg.Count = count
		}
		if dialect, _ := cmd.Flags().GetString("dialect"); dialect != "" {
			cfg.Dialect = dialect
		}

		publisher := stream.NewKafkaPublisher(deps.App.Config.Kafka)
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Warn(ctx, "close kafka publisher failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		generator, err := simulate.NewGenerator(publisher, simulate.Config{
			Users:        cfg.Users,
			EventsPerSec: cfg.EventsPerSec,
			Count:        cfg.Count,
			Dialect:      cfg.Dialect,
		})
		if err != nil {
			return errs.Wrap(err, "build generator")
		}

		if err := generator.Run(ctx); err != nil {
			return errs.Wrap(err, "run generator")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "produced %d events to topic %s\n", cfg.Count, deps.App.Config.Kafka.Topic); err != nil {
			return errs.Wrap(err, "write generate output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int("count", 0, "Number of events to produce (defaults to generator.count config)")
	generateCmd.Flags().String("dialect", "", "Payload dialect: canonical or action (defaults to generator.dialect config)")
}
