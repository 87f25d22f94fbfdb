package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
	"github.com/ember-lang/ember/internal/emberconfig"
)

var runCmd = &cobra.Command{
	Use:   "run <file.embc>",
	Short: "Run a compiled Ember bytecode file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		trace, _ := cmd.Flags().GetBool("trace")

		cfg, err := emberconfig.Load(cfgPath)
		if err != nil {
			return err
		}
		opts := cfg.ToOptions()
		opts.Trace = opts.Trace || trace

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}

		vm := ember.New(opts)
		vm.SetErrorCallback(func(_ *ember.VM, message string) {
			emberconfig.ErrorColor.Fprintln(os.Stderr, message)
		})

		proto, err := bytecode.UnmarshalPortable(vm, data)
		if err != nil {
			return fmt.Errorf("run: decode %s: %w", args[0], err)
		}

		exit := vm.Run(proto)
		if exit != ember.Success {
			os.Exit(1)
		}
		fmt.Println(vm.ReturnValue.String())
		return nil
	},
}
