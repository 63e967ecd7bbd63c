package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/jordfras/mocksmith/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(color.RedString("Error:"), err)
		os.Exit(1)
	}
}
