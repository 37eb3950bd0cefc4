package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
)

var (
	layoutWidth int
	layoutGeo   bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout <file>",
	Short: "Draw the schematic of a railML file",
	Long: `Solve the schematic layout of a railML file and draw it as text.

Examples:
  railio-cli layout station.xml
  railio-cli layout station.xml --width 160 --geo`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layoutCmd := commands.NewLayoutCommand(sources, pipe, args[0], layoutWidth)
		layoutCmd.PreferGeo = layoutGeo
		result, err := layoutCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Print(result.Text)
		for _, msg := range result.Report.Warnings.Messages() {
			fmt.Println("warning:", msg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.Flags().IntVar(&layoutWidth, "width", commands.DefaultLayoutWidth, "drawing width in columns")
	layoutCmd.Flags().BoolVar(&layoutGeo, "geo", false, "use geo coordinates where every node has one")
}
