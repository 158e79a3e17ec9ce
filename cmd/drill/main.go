// Command drill tests coding-exercise solutions against a remote judge.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
