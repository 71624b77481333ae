package main

import (
	"os"

	"github.com/rpm-tool/rpm-tool/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
