package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"FluxLedger/internal/model"
	"FluxLedger/internal/pool"
)

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	stable, pegged, floating := s.Ledger.TotalSupplies()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_stable":        stable,
		"total_pegged":        pegged,
		"total_floating":      floating,
		"burnt_stable_supply": s.Engine.BurntStableSupply(),
		"oracle_rate":         s.Engine.OracleRate(),
		"rates":               s.Engine.CurrentRates(),
		"open_pools":          len(s.Pools.Pools()),
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Ledger.Accounts())
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.Ledger.View(chi.URLParam(r, "name"))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleAccrueYield(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APY float64 `json:"apy"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.APY < 0 {
		writeError(w, http.StatusBadRequest, errors.New("apy must be non-negative"))
		return
	}
	if req.APY == 0 {
		req.APY = pool.YieldAPY
	}

	// Repeated calls within the same period double-count; period discipline
	// is the caller's responsibility, the same as for the cron sweep.
	accrued, err := s.Pools.AccrueYieldFor(chi.URLParam(r, "name"), req.APY)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"accrued": accrued})
}

func (s *Server) handleGetOracleRate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"rate": s.Engine.OracleRate()})
}

func (s *Server) handleSetOracleRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Rate <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("rate must be positive"))
		return
	}
	s.Engine.SetOracleRate(req.Rate, "API")
	log.Printf("[INFO] oracle rate set to %s via API", humanize.CommafWithDigits(req.Rate, 4))
	writeJSON(w, http.StatusOK, map[string]float64{"rate": req.Rate})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From   string  `json:"from"`
		To     string  `json:"to"`
		Asset  string  `json:"asset"`
		Amount float64 `json:"amount"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	asset, err := model.ParseAsset(req.Asset)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}

	// The ledger moves balances unconditionally; sufficiency is checked here,
	// at the call site.
	sender, err := s.Ledger.View(req.From)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	if sender.Balance(asset) < req.Amount {
		writeError(w, http.StatusConflict, fmt.Errorf("insufficient %s balance for transfer", asset))
		return
	}

	if err := s.Engine.Transfer(req.From, req.To, asset, req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string  `json:"account"`
		Amount  float64 `json:"amount"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}

	// Caller-side precondition: the engine itself performs no balance check.
	acct, err := s.Ledger.View(req.Account)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	if acct.Stable < req.Amount {
		writeError(w, http.StatusConflict, errors.New("insufficient stable balance for conversion"))
		return
	}

	oracleRate := s.Engine.OracleRate()
	if err := s.Engine.ConvertForward(req.Account, req.Amount, oracleRate); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "oracle_rate": oracleRate})
}

func (s *Server) handleConvertBack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string  `json:"account"`
		Amount  float64 `json:"amount"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}
	if err := s.Engine.ConvertBackward(req.Account, req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Pools.Pools())
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	p, err := s.Pools.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProvideLiquidity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account        string  `json:"account"`
		PeggedAmount   float64 `json:"pegged_amount"`
		FloatingAmount float64 `json:"floating_amount"`
		LockDays       int     `json:"lock_days"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PeggedAmount <= 0 || req.FloatingAmount <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("both reserve amounts must be positive"))
		return
	}
	if req.LockDays < 0 {
		writeError(w, http.StatusBadRequest, errors.New("lock_days must be non-negative"))
		return
	}

	id, err := s.Pools.Provide(req.Account, req.PeggedAmount, req.FloatingAmount, req.LockDays)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	log.Printf("[INFO] pool %s created by %s (%s pegged / %s floating)",
		id, req.Account,
		humanize.CommafWithDigits(req.PeggedAmount, 4),
		humanize.CommafWithDigits(req.FloatingAmount, 4))
	writeJSON(w, http.StatusCreated, map[string]string{"pool_id": id})
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account   string  `json:"account"`
		AmountIn  float64 `json:"amount_in"`
		Direction string  `json:"direction"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dir, ok := pool.ParseDirection(req.Direction)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown direction %q", req.Direction))
		return
	}
	if req.AmountIn <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("amount_in must be positive"))
		return
	}

	amountOut, err := s.Pools.Swap(req.Account, chi.URLParam(r, "id"), req.AmountIn, dir)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"amount_out": amountOut})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string `json:"account"`
	}
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Pools.Withdraw(req.Account, chi.URLParam(r, "id")); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
