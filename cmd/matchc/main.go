// Command matchc is a small demo CLI over the matchc compiler library. The
// surface AST is a pre-parsed tree by design (spec §6): this binary has no
// concrete host syntax to parse, so its "demo" subcommand runs the library
// against a handful of named, built-in pattern fixtures instead of reading
// a source file, the same role gala's transpile command fills for GALA
// source but with fixture selection standing in for a real parser.
package main

import "matchc/cmd/matchc/commands"

func main() {
	commands.Execute()
}
