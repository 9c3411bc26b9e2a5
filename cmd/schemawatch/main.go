// schemawatch regenerates engine modules whenever their schema.toml changes.
package main

import (
	"os"

	"github.com/hupe1980/schemawatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
