package main

import (
	"os"

	"github.com/cristianoliveira/workbench/cmd"
)

func main() {
	err := cmd.Execute()
	closeClients()
	if err != nil {
		os.Exit(1)
	}
}
