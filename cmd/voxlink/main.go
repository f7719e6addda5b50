// Command voxlink connects to a Mumble server from the command line. It logs
// control traffic and received voice, and can transmit an Ogg Opus file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
