// Command directus-typescript-gen writes TypeScript declarations for the data
// model of a Directus instance.
package main

import (
	"fmt"
	"os"

	"github.com/Anoesj/directus-typescript-gen/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
