package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file.embc>",
	Short: "Run a file and report heap/GC statistics afterward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		vm := ember.New(ember.DefaultOptions())
		proto, err := bytecode.UnmarshalPortable(vm, data)
		if err != nil {
			return fmt.Errorf("stats: decode %s: %w", args[0], err)
		}
		exit := vm.Run(proto)

		p := message.NewPrinter(language.English)
		p.Printf("exit: %v\n", exit)
		p.Printf("live objects: %d\n", vm.Heap.LiveObjects())
		p.Printf("bytes allocated: %d\n", vm.Heap.BytesAllocated())
		p.Printf("next gc: %d\n", vm.Heap.NextGC())
		p.Printf("gc cycles: %d\n", vm.Heap.Cycles())
		return nil
	},
}
