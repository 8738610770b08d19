package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/AbsaOSS/spot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
