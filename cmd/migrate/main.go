package main

import (
	"context"
	"os"

	"github.com/holdr-id/wallet-node/internal/config"
	"github.com/holdr-id/wallet-node/internal/db/schema"
	"github.com/holdr-id/wallet-node/internal/log"

	_ "github.com/lib/pq"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		log.Error(ctx, "cannot load config", err)
		return
	}

	ctx = log.NewContext(ctx, cfg.Log.Level, cfg.Log.Mode, os.Stdout)

	if err := schema.Migrate(cfg.Database.URL); err != nil {
		log.Error(ctx, "error migrating database", err)
		return
	}

	log.Info(ctx, "migration done!")
}
