package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cultivatehq/cultivate/backend/internal/generator"
	"github.com/cultivatehq/cultivate/backend/internal/snapshotfile"
)

func generateCmd(flags *globalFlags) *cobra.Command {
	var (
		cfg          = generator.DefaultConfig()
		outputDir    string
		snapshotPath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic network dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flags.logger(cmd)

			dataset, err := generator.New(cfg).Generate(cmd.Context())
			if err != nil {
				return fmt.Errorf("generate dataset: %w", err)
			}
			if err := generator.WriteDataset(dataset, outputDir); err != nil {
				return err
			}
			logger.Info("dataset written",
				"dir", outputDir,
				"contacts", len(dataset.Contacts),
				"connections", len(dataset.Connections),
			)

			if snapshotPath == "" {
				return nil
			}
			req, err := generator.PathRequest(dataset)
			if err != nil {
				return err
			}
			if err := snapshotfile.Write(snapshotPath, req); err != nil {
				return err
			}
			logger.Info("snapshot written", "path", snapshotPath, "targets", len(req.TargetContactIDs))
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "out", "./seed-data", "Directory for contacts.json and connections.json")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Also write a path request snapshot (.json or .yaml)")
	cmd.Flags().StringVar(&cfg.OwnerID, "owner", cfg.OwnerID, "Owner id stamped on every record")
	cmd.Flags().IntVar(&cfg.NumContacts, "contacts", cfg.NumContacts, "Number of contacts")
	cmd.Flags().IntVar(&cfg.ConnectionsPer, "connections-per", cfg.ConnectionsPer, "Maximum connections added per contact")
	cmd.Flags().Float64Var(&cfg.GoalTargetChance, "goal-chance", cfg.GoalTargetChance, "Probability that a contact is a goal target")
	cmd.Flags().Float64Var(&cfg.IntroductionChance, "intro-chance", cfg.IntroductionChance, "Probability that a connection records an introduction")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks one from the clock)")

	return cmd
}
