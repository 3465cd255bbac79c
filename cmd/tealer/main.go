package main

import (
	"os"

	"github.com/gnolang/tealer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
