// The main package for the orgharvest executable.
package main

import (
	"github.com/athenaworks/orgharvest/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
