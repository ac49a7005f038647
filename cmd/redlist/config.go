package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/redlist/internal/config"
)

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write a default configuration file",
	Long:  "Write the default configuration to " + config.DefaultConfigFile() + ", or to --config when given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigFile()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateConfigCmd)
}
