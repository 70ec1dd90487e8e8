package main

import (
	"os"

	"github.com/evidentia-labs/evidentia/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
