// Command resumegate serves approval-gated resume downloads.
//
// @title       Resume Gate API
// @version     1.0
// @description Approval-gated resume downloads and contact relay for a portfolio site.
// @BasePath    /
//
// @securityDefinitions.basic BasicAuth
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tbourn/resume-gate/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := cli.NewRootCommand(version)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
