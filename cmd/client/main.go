package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mediabot/internal/buildinfo"
	"github.com/dmitrijs2005/mediabot/internal/client/cli"
	"github.com/dmitrijs2005/mediabot/internal/client/config"
	"github.com/dmitrijs2005/mediabot/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	log := logging.NewText(os.Stderr, cfg.LogLevel)

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "cannot start client", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
