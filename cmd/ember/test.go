package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/ember"
	"github.com/ember-lang/ember/internal/emberrun"
)

var testCmd = &cobra.Command{
	Use:   "test <dir>",
	Short: "Run every .embc file in a directory concurrently and report results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, _ := cmd.Flags().GetInt("jobs")

		paths, err := filepath.Glob(filepath.Join(args[0], "*.embc"))
		if err != nil {
			return fmt.Errorf("test: %w", err)
		}
		if len(paths) == 0 {
			fmt.Println("no .embc files found")
			return nil
		}

		results, err := emberrun.RunFiles(context.Background(), paths, jobs, ember.DefaultOptions)
		if err != nil {
			return fmt.Errorf("test: %w", err)
		}
		fmt.Print(emberrun.Summarize(results))
		return nil
	},
}

func init() {
	testCmd.Flags().Int("jobs", 0, "max concurrent VMs (0 = one per file)")
}
