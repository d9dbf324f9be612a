package main

import (
	"context"
	"log"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/eventbooking/internal/buildinfo"
	"github.com/dmitrijs2005/eventbooking/internal/logging"
	"github.com/dmitrijs2005/eventbooking/internal/server"
	"github.com/dmitrijs2005/eventbooking/internal/server/config"
)

func main() {

	figure.NewFigure("eventbooking", "cybermedium", true).Print()
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.NewZerologJSON(os.Stdout, cfg.IsDev())

	app := server.NewApp(cfg, logger)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
