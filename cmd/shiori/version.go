package main

import (
	"fmt"

	"github.com/sawane/shiori"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shiori",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shiori version %s\n", shiori.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
