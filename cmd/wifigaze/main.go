// ===== cmd/wifigaze/main.go =====
package main

import (
	"context"
	"fmt"
	"os"
)

var (
	sha1ver   string
	buildTime string
	repoName  string
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "wifigaze: %v\n", err)
		os.Exit(1)
	}
}
