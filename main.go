package main

import (
	"os"

	"github.com/gunalchandran/grocery-backend/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
