package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("file:", configPath)
		fmt.Println(cfg.Redacted())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
