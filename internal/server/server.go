// Package server exposes the engine over a JSON HTTP API, mirroring the
// operations the web layer drives: oracle rate management, transfers,
// conversions, and pool operations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"FluxLedger/internal/engine"
	"FluxLedger/internal/ledger"
	"FluxLedger/internal/pool"
)

const requestLimit = 1 << 20 // 1 MiB

// Server hosts the HTTP API.
type Server struct {
	Ledger *ledger.Ledger
	Engine *engine.Engine
	Pools  *pool.Manager

	http *http.Server
}

// New creates a Server listening on addr.
func New(addr string, l *ledger.Ledger, eng *engine.Engine, pm *pool.Manager) *Server {
	s := &Server{Ledger: l, Engine: eng, Pools: pm}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	r.Get("/accounts", s.handleListAccounts)
	r.Get("/accounts/{name}", s.handleGetAccount)
	r.Post("/accounts/{name}/accrue_yield", s.handleAccrueYield)
	r.Get("/oracle/rate", s.handleGetOracleRate)
	r.Put("/oracle/rate", s.handleSetOracleRate)
	r.Post("/transfer", s.handleTransfer)
	r.Post("/convert", s.handleConvert)
	r.Post("/convert_back", s.handleConvertBack)
	r.Route("/pools", func(pr chi.Router) {
		pr.Get("/", s.handleListPools)
		pr.Post("/", s.handleProvideLiquidity)
		pr.Get("/{id}", s.handleGetPool)
		pr.Post("/{id}/swap", s.handleSwap)
		pr.Post("/{id}/withdraw", s.handleWithdraw)
	})

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[INFO] http server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func decodeRequest(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, requestLimit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeOperationError maps the engine's expected failure taxonomy onto HTTP
// statuses: not-found → 404, insufficient-balance / locked → 409.
func writeOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, pool.ErrPoolNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, engine.ErrInsufficientBalance),
		errors.Is(err, pool.ErrInsufficientBalance),
		errors.Is(err, pool.ErrPoolLocked),
		errors.Is(err, pool.ErrEmptyPool):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
