package main

import (
	"context"
	"log"
	"os"

	"github.com/matoscout/api/internal/buildinfo"
	"github.com/matoscout/api/internal/server"
	"github.com/matoscout/api/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
