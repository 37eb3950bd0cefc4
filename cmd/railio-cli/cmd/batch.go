package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
	"railio/internal/railml"
)

var (
	batchWorkers   int
	batchRoundTrip string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Import every railML file below a directory",
	Long: `Import every .xml and .railml file below a directory in parallel and
print one line per file. With --roundtrip each file is also exported and
re-imported.

Examples:
  railio-cli batch ./infrastructure
  railio-cli batch ./infrastructure -w 8 --roundtrip 2.4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers = batchWorkers
		}
		batch := commands.NewBatchCommand(sources, pipe, args[0], workers)
		if batchRoundTrip != "" {
			v, err := railml.ParseVersion(batchRoundTrip)
			if err != nil {
				return err
			}
			batch.RoundTrip = v
		}

		result, err := batch.Execute(cmd.Context())
		if err != nil {
			return err
		}

		for _, it := range result.Items {
			switch {
			case it.Err != nil:
				fmt.Printf("FAIL  %s  %v\n", it.Path, it.Err)
			case batch.RoundTrip != "" && !it.Lossless:
				fmt.Printf("LOSS  %s  %d dump lines differ\n", it.Path, it.Differences)
			default:
				fmt.Printf("ok    %s  railML %s  %d tracks  %d objects  %d warnings\n",
					it.Path, it.Report.Version, it.Report.Counts["tracks"], it.Report.Counts["objects"], len(it.Report.Warnings))
			}
		}
		fmt.Println(result.Message)
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", result.Failed, len(result.Items))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel imports (default from config)")
	batchCmd.Flags().StringVar(&batchRoundTrip, "roundtrip", "", "also round-trip each file via this railML version")
}
