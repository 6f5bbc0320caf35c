package main

import (
	"os"

	"github.com/speechpath/speechpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
