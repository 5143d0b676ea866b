package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/statusboard/internal/client/cli"
	"github.com/dmitrijs2005/statusboard/internal/client/config"
	"github.com/dmitrijs2005/statusboard/internal/logging"
)

func main() {

	cfg := config.LoadConfig()

	var w io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer f.Close()
		w = f
	}
	logger := logging.New(w, cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
	}

}
