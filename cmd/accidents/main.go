// Command accidents runs the accident analysis jobs: it scrapes the station
// table, loads the police accident exports into prepared tables and sinks, and
// renders the figures and the animal report.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
