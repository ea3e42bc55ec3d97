// The verifier node receives proof envelopes, checks them against the on
// chain verifier or locally with the circuit's verification key, and
// optionally records valid verifications. It needs no database, kms or
// prover; in off-chain mode it does not even need an rpc node.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/holdr-id/wallet-node/internal/config"
	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/core/services"
	"github.com/holdr-id/wallet-node/internal/envelope"
	"github.com/holdr-id/wallet-node/internal/gateways"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/pkg/loaders"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", err)
		return
	}

	ctx := log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout)

	var verification ports.VerificationService
	if cfg.OffChainVerification {
		local := gateways.NewLocalVerifier(loaders.NewCircuits(cfg.Circuit.Path))
		verification = services.NewOffchainVerification(local)
		log.Info(ctx, "verifying proofs off chain", "circuits", cfg.Circuit.Path)
	} else {
		chain, err := gateways.NewChainGateway(ctx, cfg.Ethereum)
		if err != nil {
			log.Error(ctx, "cannot create chain gateway", err)
			return
		}
		verification = services.NewVerification(chain, cfg.Ethereum.TransactorKey != "")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: routes(ctx, verification),
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(ctx, fmt.Sprintf("verifier started on port:%d", cfg.ServerPort))
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

func routes(ctx context.Context, verification ports.VerificationService) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(log.ChiMiddleware(ctx))
	mux.Use(cors.AllowAll().Handler)

	mux.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "up"})
	})
	mux.Post("/v1/proofs/receive", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Envelope string `json:"envelope"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Envelope == "" {
			respond(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
			return
		}
		verified, err := verification.Receive(r.Context(), req.Envelope)
		if err != nil {
			switch {
			case errors.Is(err, envelope.ErrExpired):
				respond(w, http.StatusGone, map[string]string{"message": err.Error()})
			case errors.Is(err, envelope.ErrMalformed), errors.Is(err, domain.ErrWrongEnvelopeKind):
				respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			default:
				log.Error(r.Context(), "receiving proof", err)
				respond(w, http.StatusBadGateway, map[string]string{"message": "verification unavailable"})
			}
			return
		}
		respond(w, http.StatusOK, map[string]any{
			"valid":      verified.Valid,
			"circuitId":  verified.Share.CircuitID,
			"holder":     verified.Share.Holder,
			"receivedAt": verified.ReceivedAt.Format(time.RFC3339),
			"txHash":     verified.TxHash,
		})
	})
	return mux
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
