// Package main is the entry point for the storefront CLI and BFF server.
package main

import (
	"github.com/donaldgifford/storefront/cmd/storefront/cmd"
)

func main() {
	cmd.Execute()
}
