// Command molgraph builds polypeptide backbones from a YAML configuration
// and answers selection, proximity and torsion queries against them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
