// coffea analyzes dependencies in compiled JVM artifacts.
package main

import (
	"os"

	"github.com/luoweipeter/coffea/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
