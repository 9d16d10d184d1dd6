// Command synapse runs the SynapseFlow research gateway.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/synapseflow/gateway/cmd/synapse/app"
)

// Set by the release build with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	a, err := app.New(version, commit, date, builtBy)
	app.ExitOnError(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = a.Execute(ctx, os.Args[1:])
	stop()
	app.ExitOnError(err)
}
