package main

import (
	"os"

	"github.com/yatube/yatube/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
