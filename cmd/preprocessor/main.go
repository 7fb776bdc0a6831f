package main

import (
	"os"

	"github.com/openmaine/budget-preprocessor/cmd/preprocessor/commands"
	"github.com/openmaine/budget-preprocessor/cmd/preprocessor/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
