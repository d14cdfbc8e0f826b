package main

import (
	"fmt"
	"os"

	"github.com/rafaelescrich/go-dstu4145/internal/cli"
)

func main() {
	if err := cli.NewCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
