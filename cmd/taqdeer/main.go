// Command taqdeer queries a running Taqdeer API from the terminal.
//
// Usage:
//
//	taqdeer dua "before travelling"
//	taqdeer ruling "is music permissible?"
//	taqdeer stats
//	taqdeer ref "Sunan Abu Dawood 1517 | Hasan"
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
