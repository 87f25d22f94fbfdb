package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.embc>",
	Short: "Disassemble a compiled Ember bytecode file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("disasm: %w", err)
		}
		vm := ember.New(ember.DefaultOptions())
		proto, err := bytecode.UnmarshalPortable(vm, data)
		if err != nil {
			return fmt.Errorf("disasm: decode %s: %w", args[0], err)
		}
		fmt.Print(bytecode.Disassemble(proto))
		return nil
	},
}
