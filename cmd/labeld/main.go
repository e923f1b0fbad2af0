// Package main is the entry point of labeld.
// labeld is a label print daemon that receives template+record jobs over
// WebSocket and compiles them to the attached printer's command language.
// The one-shot subcommands expose the same pipeline without the daemon.
package main

import "os"

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
