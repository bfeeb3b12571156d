// Package main provides the entry point for the hierconf CLI.
package main

import (
	"fmt"
	"os"

	"github.com/hierconf/hierconf/cmd/hierconf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
