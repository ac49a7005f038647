package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of redlist",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "redlist %s\n", Version)
		fmt.Fprintln(out, "Red notice search")
		fmt.Fprintln(out, "github.com/pders01/redlist")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
