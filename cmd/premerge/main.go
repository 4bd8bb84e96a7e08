package main

import (
	"os"

	"github.com/dshills/premerge/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
