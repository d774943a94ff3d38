// Command authclient is a native reference client for the auth service. It
// keeps its session in an encrypted sqlite file and signs requests the way
// the mobile app does.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
