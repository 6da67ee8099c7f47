package main

import (
	"os"

	"github.com/wonny/alphaopt/cmd/alphaopt/commands"
)

// main is the entry point for the alphaopt CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/alphaopt [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
