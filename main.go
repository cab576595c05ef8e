// Package main is the entry point for the composify CLI.
package main

import "composify.dev/pkg/composify/cmd"

func main() {
	cmd.Execute()
}
