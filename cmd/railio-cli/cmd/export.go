package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
	"railio/internal/railml"
)

var (
	exportOutput   string
	exportVersion  string
	exportRenumber bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a railML file as another railML version",
	Long: `Import a railML file and write it as railML 2.3, 2.4 or 2.5.
Without --output the document is printed to stdout.

Examples:
  railio-cli export station.xml --to 2.3 -o station-23.xml
  railio-cli export station.xml --to 2.5 --renumber`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version := cfg.Version()
		if exportVersion != "" {
			v, err := railml.ParseVersion(exportVersion)
			if err != nil {
				return err
			}
			version = v
		}

		exportCmd := commands.NewExportCommand(sources, pipe, args[0], exportOutput, version)
		exportCmd.Renumber = exportRenumber
		result, err := exportCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		if exportOutput == "" {
			_, err = os.Stdout.Write(result.Data)
			return err
		}
		fmt.Println(result.Message)
		if len(result.Renamed) > 0 {
			old := make([]string, 0, len(result.Renamed))
			for id := range result.Renamed {
				old = append(old, id)
			}
			sort.Strings(old)
			for _, id := range old {
				fmt.Printf("  %s -> %s\n", id, result.Renamed[id])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write")
	exportCmd.Flags().StringVar(&exportVersion, "to", "", "target railML version (default from config)")
	exportCmd.Flags().BoolVar(&exportRenumber, "renumber", false, "regenerate element ids")
}
