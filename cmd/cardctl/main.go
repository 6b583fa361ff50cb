package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JonMunkholm/cardimport/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, cli.ErrDefects) {
			fmt.Fprintln(os.Stderr, cli.ErrorMessage(err))
		}
		os.Exit(1)
	}
}
