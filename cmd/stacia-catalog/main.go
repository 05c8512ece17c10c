// Command stacia-catalog prints the consent category definitions a business
// category resolves to, without starting the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
