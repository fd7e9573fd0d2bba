// Command quiz-client is the quiz platform client
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/upb/quiz-client/internal/cli"
)

// set at build time via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, BuildTime: buildTime})
	stop()
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
