// Command docflow classifies documents and evaluates rule tables offline,
// without a database or the HTTP service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
