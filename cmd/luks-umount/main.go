// Command luks-umount unmounts a LUKS device and locks it.
package main

import (
	"os"

	"github.com/nace/luksctl/internal/cli"
)

func main() {
	ctx := cli.NewGlobalContext()
	os.Exit(cli.Execute(ctx, cli.NewUnmountToolCommand(ctx)))
}
