// Package main provides the entry point for the relay CLI.
package main

import (
	"github.com/agentstation/relay/cmd/relay/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
