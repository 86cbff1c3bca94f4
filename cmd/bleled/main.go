// Command bleled exposes an LED as a BLE peripheral. Centrals write "ON",
// "OFF", "TOGGLE" or "STATUS" to the control characteristic.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
