package main

import (
	"fmt"
	"os"

	"github.com/sawane/shiori/internal/cli"
	"github.com/sawane/shiori/internal/logging"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Play a scenario interactively in the terminal",
	Long:  `Loads a YAML scenario document and plays it with a line-based terminal UI. Press enter to advance, type an option number to choose.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		saveDir, _ := cmd.Flags().GetString("save-dir")
		auto, _ := cmd.Flags().GetBool("auto")
		verbose, _ := cmd.Flags().GetBool("verbose")

		opts := cli.PlayOptions{
			SaveDir: saveDir,
			Auto:    auto,
		}
		if verbose {
			level, err := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			opts.Logger = logging.New(level)
		}

		if err := cli.RunPlay(args[0], opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("save-dir", "", "Directory for save slots (defaults to .shiori/saves)")
	runCmd.Flags().Bool("auto", false, "Play without prompts, always taking the first choice")
	runCmd.Flags().BoolP("verbose", "v", false, "Log engine internals to stderr")
}
