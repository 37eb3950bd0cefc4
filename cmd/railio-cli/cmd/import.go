package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
	"railio/internal/ports"
)

var noRecord bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a railML file and record the run",
	Long: `Import a railML file, resolve topology, mileage and objects, and print
a summary with parser diagnostics and warnings. The run and its dump are
recorded in the run index unless --no-record is given.

Examples:
  railio-cli import station.xml
  railio-cli import -m estimated station.xml
  railio-cli import --no-record station.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var index ports.RunIndex
		if !noRecord {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			defer idx.Close()
			index = idx
		}

		importCmd := commands.NewImportCommand(sources, pipe, index, args[0])
		result, err := importCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		fmt.Print(result.Import.Report.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record the run in the index")
}
