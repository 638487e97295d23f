package main

import "github.com/scrapex/scrapex/internal/cli"

func main() {
	// Signal handling lives with the abort flag so an interrupt still
	// flushes collected posts instead of killing the process outright.
	cli.Execute()
}
