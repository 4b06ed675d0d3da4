package main

import (
	"os"

	"github.com/jinbangyi/apikey-usage-inspector/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
