// Command students-api serves the cached student API.
//
//	students-api migrate --config=config/local.yaml
//	students-api serve --config=config/local.yaml
//
// The config path may also be given with CONFIG_PATH.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
