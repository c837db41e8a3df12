package main

import (
	"os"

	"github.com/abhisek/growth90/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
