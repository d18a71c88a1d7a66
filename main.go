// Package main is the entry point for the langtest CLI.
package main

import "langtest.dev/pkg/langtest/cmd"

func main() {
	cmd.Execute()
}
