package main

import (
	"os"

	_ "mtbench/cmd/mtbench/docs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
