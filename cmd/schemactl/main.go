package main

import (
	"os"

	"github.com/openkraft/schemactl/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
