package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
	"github.com/buildbot-tools/bbinfo/internal/version"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/root"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := bbErrors.NewHandler()

	f := factory.New(version.Version)
	rootCmd, err := root.NewCmdRoot(f)
	if err != nil {
		handler.Handle(err)
		return
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Verbose is set by the root command's PersistentPreRun once flags
		// are parsed, so the handler picks it up here.
		handler.WithVerbose(f.Verbose).Handle(err)
	}
}
