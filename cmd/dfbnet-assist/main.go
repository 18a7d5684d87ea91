package main

import (
	"os"

	"github.com/pfrederiksen/dfbnet-assist/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
