package main

import (
	"os"

	muninncmder "github.com/muninnhq/muninn/cmd/muninn"
)

func main() {
	cmd := muninncmder.NewMuninnCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
