// cmd/recon/main.go
package main

import (
	"fmt"
	"os"

	"github.com/pentora-ai/reconcore/cmd/recon/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
