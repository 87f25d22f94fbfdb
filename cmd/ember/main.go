// Command ember is the toolchain CLI around the internal/ember VM: run
// a compiled bytecode file, disassemble it, inspect a GC cycle
// interactively, or batch-run a directory of them.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/emberconfig"
	"github.com/ember-lang/ember/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ember",
	Short: "Ember bytecode VM toolchain",
	Long:  `Ember runs and inspects compiled Ember bytecode (.embc) files.`,
}

func main() {
	rootCmd.Version = version.String()

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(gcviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(testCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("trace", false, "print every instruction as it executes")
	rootCmd.PersistentFlags().String("config", "ember.toml", "path to the project manifest")

	cobra.OnInitialize(func() {
		mode, _ := rootCmd.PersistentFlags().GetString("color")
		emberconfig.ApplyColorMode(emberconfig.ColorMode(mode))
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
