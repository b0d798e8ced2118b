package main

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/QuangTung97/eventstore"
	"github.com/QuangTung97/eventstore/config"
	"github.com/QuangTung97/eventstore/pkg/otellib"
	"github.com/QuangTung97/eventstore/repository"
	"github.com/QuangTung97/eventstore/service/snapshotter"
)

func main() {
	rootCmd := cobra.Command{
		Use: "snapshotter",
	}
	rootCmd.AddCommand(
		listCommand(),
		clearInactiveCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

func setup() (repository.Provider, *zap.Logger, func()) {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	tracerProvider, shutdown := otellib.InitOtel("eventstore-snapshotter", "local", conf.Jaeger)
	otel.SetTracerProvider(tracerProvider)

	db := conf.Postgres.MustConnect()
	provider := repository.NewProvider(db)
	return provider, logger, shutdown
}

func listCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list aggregates that need snapshots, oldest marks first",
		Run: func(cmd *cobra.Command, args []string) {
			provider, logger, shutdown := setup()
			defer shutdown()

			st := eventstore.Current().EventStore

			ctx := provider.Readonly(context.Background())
			ids, err := st.AggregatesThatNeedSnapshotsOrderedByPriority(ctx, limit)
			if err != nil {
				logger.Fatal("list aggregates", zap.Error(err))
			}
			for _, id := range ids {
				fmt.Println(id)
			}
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "max number of aggregates to list")
	return cmd
}

func clearInactiveCommand() *cobra.Command {
	var before time.Duration

	cmd := &cobra.Command{
		Use:   "clear-inactive",
		Short: "unmark aggregates whose last event is older than the given age",
		Run: func(cmd *cobra.Command, args []string) {
			provider, logger, shutdown := setup()
			defer shutdown()

			st := eventstore.Current().EventStore
			service := snapshotter.New(provider, st, nil, snapshotter.WithLogger(logger))

			cutoff := time.Now().Add(-before)
			err := service.ClearInactiveBefore(context.Background(), cutoff)
			if err != nil {
				logger.Fatal("clear inactive aggregates", zap.Error(err))
			}
			logger.Info("cleared inactive aggregates", zap.Time("cutoff", cutoff))
		},
	}
	cmd.Flags().DurationVar(&before, "before", 30*24*time.Hour, "minimum age of the last event")
	return cmd
}
