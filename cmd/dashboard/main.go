package main

import (
	"os"

	"github.com/Makepad-fr/dashboard/internal/cli"
)

func main() {
	// Hand every argument to the command tree; it reports its own errors.
	os.Exit(cli.Run(os.Args[1:], cli.Options{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}))
}
