// Command compassx streams stable compass headings from a simulated device.
package main

import (
	"os"

	"github.com/custodia-labs/compassx/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
