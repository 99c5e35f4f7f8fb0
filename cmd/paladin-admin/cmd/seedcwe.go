package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anuraagbaishya/paladin/internal/advisory"
	"github.com/anuraagbaishya/paladin/internal/app"
	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/internal/infra/postgres"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// seedCweCmd talks to the database directly rather than the API: the CWE
// catalog download is slow and only done at install time.
var seedCweCmd = &cobra.Command{
	Use:   "seed-cwe",
	Short: "Download the MITRE CWE catalog and seed the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		db, err := postgres.New(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		ctx := context.Background()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		svc := app.NewCweService(postgres.NewCweRepository(db), advisory.NewCweImporter(), logger.NewDefault())

		n, err := svc.Seed(ctx, force)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("CWE catalog already seeded, use --force to reload")
			return nil
		}

		fmt.Printf("Seeded %d CWE entries\n", n)
		return nil
	},
}

func init() {
	seedCweCmd.Flags().Bool("force", false, "Reload the catalog even when already seeded")
}
