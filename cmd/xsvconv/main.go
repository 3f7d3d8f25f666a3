package main

import (
	"fmt"
	"os"

	"github.com/oleg578/swiftxsv/cmd/xsvconv/launcher"
)

func main() {
	if err := launcher.Launch(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
