// Command conductor composes multi-pod docker projects across environments.
package main

import (
	"os"

	"github.com/cameronsjo/conductor/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
