package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/server"
	"github.com/dmitrijs2005/statusboard/internal/server/auth"
	"github.com/dmitrijs2005/statusboard/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.IssueTokenFor != "" {
		token, err := auth.GenerateToken(cfg.IssueTokenFor, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}

}
