package main

import (
	"context"
	"log"
	"os"

	"github.com/matoscout/api/internal/buildinfo"
	"github.com/matoscout/api/internal/client/cli"
	"github.com/matoscout/api/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg, os.Stdin, os.Stdout)

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
