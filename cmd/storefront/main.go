package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/stonemarket/storefront/internal/app"
	"github.com/stonemarket/storefront/internal/infrastructure/config"
	"github.com/stonemarket/storefront/pkg/logger"
)

func main() {
	cliApp := &cli.App{
		Name:      "storefront",
		Usage:     "serve the stone and plant storefront",
		ArgsUsage: "[port]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "listen port, overrides PORT",
			},
		},
		Action: serve,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront",
	})

	port := cfg.Port
	switch {
	case c.IsSet("port"):
		port = c.String("port")
	case c.Args().Present():
		port = c.Args().First()
	}

	return app.Run(ctx, cfg, net.JoinHostPort("", port), log)
}
