package main

import (
	"fmt"
	cli "github.com/langowen/converter/internal/converter_cli"
	"github.com/langowen/converter/pkg/gateway"
	"os"
)

func main() {
	rootCmd := cli.NewRootCommand(gateway.Shared())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
