package main

import (
	"github.com/custodia-labs/fetcha-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
