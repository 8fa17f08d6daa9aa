// Command goldgraph curates a Text-to-SQL benchmark corpus.
package main

import (
	"os"

	"github.com/benchforge/goldgraph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
