package main

import (
	"os"

	"github.com/pranubaita/photoshare/src/commands"
)

func main() {
	// cobra has already printed the error
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
