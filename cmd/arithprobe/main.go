package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/roach88/arithprobe/internal/cli"
)

// Set via -ldflags "-X main.Version=...".
var (
	Version   = ""
	GitCommit = ""
)

const shortHashLength = 7

func main() {
	cli.SetVersion(buildVersionString())
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}

func buildVersionString() string {
	v := Version
	if v == "" {
		v = "dev"
	}

	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
					break
				}
			}
		}
	}
	if len(commit) > shortHashLength {
		commit = commit[:shortHashLength]
	}
	if commit == "" {
		return v
	}
	return fmt.Sprintf("%s, commit: %s", v, commit)
}
