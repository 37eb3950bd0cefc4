package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"railio/internal/application/commands"
	"railio/internal/domain"
	"railio/internal/railml"
)

var roundTripVersion string

var roundTripCmd = &cobra.Command{
	Use:   "roundtrip <file>",
	Short: "Check that a file survives export and re-import",
	Long: `Import a railML file, write it as the given version, import the output
again and compare both models. Exits with an error when content was lost.

Examples:
  railio-cli roundtrip station.xml
  railio-cli roundtrip station.xml --via 2.3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version := cfg.Version()
		if roundTripVersion != "" {
			v, err := railml.ParseVersion(roundTripVersion)
			if err != nil {
				return err
			}
			version = v
		}

		rtCmd := commands.NewRoundTripCommand(sources, pipe, args[0], version)
		result, err := rtCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		printCountChanges(result.Before, result.After)
		for _, line := range result.RoundTrip.Differences {
			fmt.Println(line)
		}
		if !result.Lossless() {
			return fmt.Errorf("round trip of %s is not lossless", args[0])
		}
		return nil
	},
}

func printCountChanges(before, after map[domain.ObjectKind]int) {
	seen := make(map[domain.ObjectKind]bool)
	var kinds []domain.ObjectKind
	for _, m := range []map[domain.ObjectKind]int{before, after} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Printf("  %-20s %d -> %d\n", k, before[k], after[k])
	}
}

func init() {
	rootCmd.AddCommand(roundTripCmd)
	roundTripCmd.Flags().StringVar(&roundTripVersion, "via", "", "railML version to write in between (default from config)")
}
