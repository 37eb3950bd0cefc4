package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
)

var (
	runsSource string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs [list|diff]",
	Short: "Inspect recorded import runs",
	Long: `List recorded import runs or compare two of them.

Examples:
  railio-cli runs list
  railio-cli runs list --source station.xml -n 5
  railio-cli runs diff <from-id> <to-id>`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		runs, err := commands.NewListRunsCommand(idx, runsSource, runsLimit).Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %s  railML %s  %s  %d tracks  %d objects  %d warnings\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Source, r.Version, r.Policy,
				r.Tracks, r.Objects, r.Warnings)
		}
		return nil
	},
}

var runsDiffCmd = &cobra.Command{
	Use:   "diff <from-id> <to-id>",
	Short: "Compare the dumps of two runs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		result, err := commands.NewDiffRunsCommand(idx, args[0], args[1]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for kind, c := range result.CountChanges {
			fmt.Printf("  %-20s %d -> %d\n", kind, c[0], c[1])
		}
		for _, line := range result.Differences {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsDiffCmd)
	runsListCmd.Flags().StringVar(&runsSource, "source", "", "only runs of this source file")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs, -1 for all")
}
