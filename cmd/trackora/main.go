// Package main provides the trackora CLI.
package main

import "github.com/mesh-intelligence/trackora/internal/cli"

func main() {
	cli.Execute()
}
