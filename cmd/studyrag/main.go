// Command studyrag is a local study assistant. It ingests course
// material into a vector index, answers questions grounded in it, and
// generates exam-preparation material from syllabi and previous papers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driving/cli"
)

// version is set at build time:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/studyrag
var version = "dev"

func main() {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
