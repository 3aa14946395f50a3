package main

import (
	"fmt"
	"os"

	"github.com/sawane/shiori/pkg/adapters/yaml"
	"github.com/sawane/shiori/pkg/scenario"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Check a scenario document for consistency",
	Long:  `Parses the document and reports broken jump targets, unreachable scenes, dead commands and malformed expressions.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Document is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := yaml.ParseDocument(data)
	if err != nil {
		return err
	}

	issues := scenario.Validate(doc)
	for _, issue := range issues {
		fmt.Println(issue.String())
	}
	if scenario.HasErrors(issues) {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	return nil
}
