package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "order management backend: catalog, orders and delivery tracking",
		Commands: []*cli.Command{
			serviceCommand(),
			migrateCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("storefront stopped")
	}
}
