package main

import (
	"fmt"
	"os"

	"github.com/legal_queries/backend/cmd/assign/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
