// Command custombuild stands in for a project-specific build script. It
// only succeeds when started from its own directory, so a build command
// that depends on its working directory can be checked both ways.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const dirName = "custombuild"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "custombuild:", err)
		os.Exit(1)
	}
	fmt.Println("custom build ok")
}

func run() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if filepath.Base(wd) != dirName {
		return fmt.Errorf("must be run from the %q directory, not %s", dirName, wd)
	}
	return nil
}
