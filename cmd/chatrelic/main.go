package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ebisawa/chatrelic/internal/cli"
)

func main() {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
