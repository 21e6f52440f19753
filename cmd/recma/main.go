// recma - Recursive molecular assembly index estimation from MSn data
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/recma/cmd/recma/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
