package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cultivatehq/cultivate/backend/internal/config"
	"github.com/cultivatehq/cultivate/backend/internal/generator"
	"github.com/cultivatehq/cultivate/backend/internal/graph"
	"github.com/cultivatehq/cultivate/backend/internal/metrics"
	"github.com/cultivatehq/cultivate/backend/internal/repository"
	"github.com/cultivatehq/cultivate/backend/internal/service"
)

func ingestCmd(flags *globalFlags) *cobra.Command {
	var (
		datasetDir string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a dataset into the graph store",
		Long: `Reads contacts.json and connections.json from --dataset-dir and upserts
them into Neo4j using the GRAPH_* settings from the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flags.logger(cmd).With("component", "ingest")

			dataset, err := generator.ReadDataset(datasetDir)
			if err != nil {
				return err
			}
			if len(dataset.Contacts) == 0 {
				return fmt.Errorf("dataset in %s has no contacts", datasetDir)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if cfg.Graph.URI == "" {
				return fmt.Errorf("GRAPH_URI is required for ingestion: %w", graph.ErrMissingURI)
			}
			client, err := graph.NewNeo4jClient(ctx, graph.OptionsFromConfig(cfg.Graph))
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(context.Background()); err != nil {
					logger.Warn("closing graph client failed", "error", err)
				}
			}()
			if err := client.VerifyConnectivity(ctx); err != nil {
				return fmt.Errorf("graph unreachable: %w", err)
			}
			logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)

			svc := service.NewNetworkService(repository.New(client), nil, service.Options{
				Logger:  logger,
				Metrics: metrics.New(),
			})
			ingestor := service.NewBulkIngestor(svc, workers)

			start := time.Now()
			logger.Info("ingesting dataset",
				"contacts", len(dataset.Contacts),
				"connections", len(dataset.Connections),
				"workers", workers,
			)
			if err := ingestor.Ingest(ctx, dataset); err != nil {
				return err
			}
			logger.Info("ingestion complete",
				"duration", time.Since(start).String(),
				"contacts", len(dataset.Contacts),
				"connections", len(dataset.Connections),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetDir, "dataset-dir", "./seed-data", "Directory containing contacts.json and connections.json")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent workers for ingestion")

	return cmd
}
