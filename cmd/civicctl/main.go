// Command civicctl runs maintenance tasks against the civic issue store.
package main

import (
	"context"
	"fmt"
	"os"

	"civic-tracker-be/config"
	"civic-tracker-be/repository"
	"civic-tracker-be/services"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "civicctl",
	Short: "Maintenance commands for the civic issue tracker",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		config.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	},
	SilenceUsage: true,
}

// withIssueService connects to MongoDB for the duration of fn.
func withIssueService(ctx context.Context, fn func(*services.IssueService) error) error {
	cfg := config.Load()

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	repo := repository.NewMongoIssueRepository(db.Collection(repository.IssueCollection))
	return fn(services.NewIssueService(repo, nil))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
