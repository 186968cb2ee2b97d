// catalog-lint checks questionnaire files and replays answer scripts through the
// navigator without a Zeebe broker.
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
