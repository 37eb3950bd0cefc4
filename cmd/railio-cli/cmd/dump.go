package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
)

var dumpOutput string

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the resolved model as JSON",
	Long: `Import a railML file and print the resolved model as deterministic,
diffable JSON.

Examples:
  railio-cli dump station.xml
  railio-cli dump station.xml -o station.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dumpCmd := commands.NewDumpCommand(sources, pipe, args[0])
		result, err := dumpCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		if dumpOutput == "" {
			_, err = os.Stdout.Write(result.Data)
			return err
		}
		if err := sources.Write(dumpOutput, result.Data); err != nil {
			return err
		}
		fmt.Printf("Wrote dump of %s to %s\n", args[0], dumpOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "write the dump to a file instead of stdout")
}
