// Package main provides the entry point for the tmbliss CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/tmbliss/cmd/tmbliss/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
