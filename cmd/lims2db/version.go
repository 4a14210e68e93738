package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of lims2db",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lims2db %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
