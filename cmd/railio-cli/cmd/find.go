package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
)

var findCmd = &cobra.Command{
	Use:   "find <file> <query>",
	Short: "Fuzzy-search elements of a railML file",
	Long: `Search track, node, OCP and object ids and names of a railML file.

Examples:
  railio-cli find station.xml sig
  railio-cli find station.xml "platform 2"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewImportCommand(sources, pipe, nil, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		matches := commands.Find(result.Import.Model, args[1])
		if len(matches) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%-16s %-20s %s\n", m.Type, m.ID, m.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
