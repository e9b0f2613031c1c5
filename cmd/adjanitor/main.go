package main

import (
	"os"

	"opslab/adjanitor/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
