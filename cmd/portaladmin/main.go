// Command portaladmin runs maintenance tasks against the portal database.
package main

import (
	"os"

	"portalku_backend/internals/configs"
)

func main() {
	configs.LoadEnv()
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		os.Exit(1)
	}
}
