// Package main is the entry point for the voxbridge CLI.
//
// Usage:
//
//	voxbridge [flags] <command>
//
// Commands:
//
//	serve    - Run the HTTP service (token minting, conversations, expert)
//	talk     - Interactive realtime voice/text session in the terminal
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/voxbridge/voxbridge/cmd/voxbridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
