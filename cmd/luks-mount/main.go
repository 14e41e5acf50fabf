// Command luks-mount unlocks a LUKS device and mounts it.
package main

import (
	"os"

	"github.com/nace/luksctl/internal/cli"
)

func main() {
	ctx := cli.NewGlobalContext()
	os.Exit(cli.Execute(ctx, cli.NewMountToolCommand(ctx)))
}
