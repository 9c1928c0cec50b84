// Command usermap assigns operator-chosen user ids to survey responses and
// looks up answers by user id.
package main

import (
	"os"

	"github.com/mesh-intelligence/usermap/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
