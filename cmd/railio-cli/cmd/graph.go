package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"railio/internal/adapters/neo4j"
	"railio/internal/application/commands"
)

var graphCmd = &cobra.Command{
	Use:   "graph [publish]",
	Short: "Work with the topology graph store",
}

var graphPublishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish the resolved topology of a file to Neo4j",
	Long: `Import a railML file and replace its topology graph in Neo4j.
The connection comes from the neo4j section of the config or the
RAILIO_NEO4J_URI, RAILIO_NEO4J_USER and RAILIO_NEO4J_PASSWORD variables.

Examples:
  RAILIO_NEO4J_URI=neo4j://localhost:7687 railio-cli graph publish station.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Neo4j.URI == "" {
			return fmt.Errorf("no neo4j uri configured: set neo4j.uri or RAILIO_NEO4J_URI")
		}
		ctx := cmd.Context()
		pub, err := neo4j.Connect(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			return err
		}
		defer pub.Close(ctx)

		result, err := commands.NewPublishCommand(sources, pipe, pub, args[0]).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s in %s\n", result.Message, result.Stats.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphPublishCmd)
}
