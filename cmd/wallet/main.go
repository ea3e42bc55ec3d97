package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/holdr-id/wallet-node/internal/api"
	"github.com/holdr-id/wallet-node/internal/config"
	"github.com/holdr-id/wallet-node/internal/core/services"
	"github.com/holdr-id/wallet-node/internal/db"
	"github.com/holdr-id/wallet-node/internal/gateways"
	"github.com/holdr-id/wallet-node/internal/kms"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/internal/primitive"
	"github.com/holdr-id/wallet-node/internal/redis"
	"github.com/holdr-id/wallet-node/internal/repositories"
	"github.com/holdr-id/wallet-node/pkg/cache"
	"github.com/holdr-id/wallet-node/pkg/loaders"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", err)
		return
	}
	if err := cfg.Sanitize(); err != nil {
		log.Error(context.Background(), "invalid configuration", err)
		return
	}

	// Context with log
	ctx := log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout)

	storage, err := db.NewStorage(cfg.Database.URL)
	if err != nil {
		log.Error(ctx, "cannot connect to database", err)
		return
	}
	defer storage.Close()

	cachex, err := buildCache(ctx, cfg)
	if err != nil {
		log.Error(ctx, "cannot initialize cache", err)
		return
	}

	keyStore := kms.NewKMS()
	if err := keyStore.RegisterKeyProvider(kms.KeyTypeBabyJubJub, kms.NewLocalBJJKeyProvider(kms.KeyTypeBabyJubJub)); err != nil {
		log.Error(ctx, "cannot register BabyJubJub key provider", err)
		return
	}
	keyID, err := loadHolderKey(keyStore, cfg.Wallet.SeedHex)
	if err != nil {
		log.Error(ctx, "cannot load holder key", err)
		return
	}
	signer, err := primitive.NewBJJSigner(keyStore, keyID)
	if err != nil {
		log.Error(ctx, "cannot create signer", err)
		return
	}

	chain, err := gateways.NewChainGateway(ctx, cfg.Ethereum)
	if err != nil {
		log.Error(ctx, "cannot create chain gateway", err)
		return
	}

	circuitLoader := loaders.NewCircuits(cfg.Circuit.Path)
	bridge := gateways.NewProverBridge(gateways.NewProver(ctx, cfg, circuitLoader))

	credentials := services.NewCredentials(repositories.NewCredentials(), chain, storage)
	qrStore := services.NewQrStoreService(cachex)
	sessions := services.NewSessionRegistry(bridge, cfg.SessionTTL)
	proof := services.NewProof(services.NewRequestBuilder(), sessions, credentials, qrStore, cfg.ServerUrl, cfg.UniversalLinkBaseUrl)
	verification := services.NewVerification(chain, cfg.Ethereum.TransactorKey != "")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: api.NewServer(proof, credentials, verification, qrStore, signer).Routes(ctx),
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(ctx, fmt.Sprintf("server started on port:%d", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil {
			log.Error(ctx, "starting http server", err)
		}
	}()

	<-quit
	log.Info(ctx, "Shutting down")
	if err := server.Shutdown(ctx); err != nil {
		log.Error(ctx, "shutting down http server", err)
	}
}

func buildCache(ctx context.Context, cfg *config.Configuration) (cache.Cache, error) {
	if cfg.Cache.Provider == config.CacheProviderRedis {
		client, err := redis.Open(ctx, cfg.Cache.Url)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(client), nil
	}
	return cache.NewMemoryCache(), nil
}

// loadHolderKey imports the configured seed, or creates an ephemeral key when
// no seed is set
func loadHolderKey(keyStore *kms.KMS, seedHex string) (kms.KeyID, error) {
	if seedHex == "" {
		return keyStore.CreateKey(kms.KeyTypeBabyJubJub)
	}
	material, err := hex.DecodeString(seedHex)
	if err != nil {
		return kms.KeyID{}, err
	}
	return keyStore.ImportKey(kms.KeyTypeBabyJubJub, material)
}
