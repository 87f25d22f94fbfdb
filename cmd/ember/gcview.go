package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
	"github.com/ember-lang/ember/internal/gcview"
)

var gcviewCmd = &cobra.Command{
	Use:   "gcview <file.embc>",
	Short: "Run a file, then step interactively through a GC cycle of the heap it leaves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("gcview: %w", err)
		}
		opts := ember.DefaultOptions()
		// Shrink the initial limit so a small demo program triggers
		// allocation-driven collections while it runs. The cycle shown in
		// the viewer is a separate one, traced by gcview.Run after Run
		// returns.
		opts.InitialGCLimit = 4096
		vm := ember.New(opts)

		proto, err := bytecode.UnmarshalPortable(vm, data)
		if err != nil {
			return fmt.Errorf("gcview: decode %s: %w", args[0], err)
		}
		vm.Run(proto)
		return gcview.Run(vm)
	},
}
