package main

import (
	"os"

	"github.com/Makepad-fr/dashboard/internal/cli"
)

// Lets `go install github.com/Makepad-fr/dashboard@latest` produce the binary.
func main() {
	os.Exit(cli.Run(os.Args[1:], cli.Options{}))
}
