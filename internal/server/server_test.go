package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FluxLedger/internal/engine"
	"FluxLedger/internal/ledger"
	"FluxLedger/internal/pool"
)

func newTestHandler(t *testing.T) (http.Handler, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	if err := l.CreateAccount("Alice", 1000); err != nil {
		t.Fatal(err)
	}
	if err := l.CreateAccount("Bob", 500); err != nil {
		t.Fatal(err)
	}
	eng := engine.New(l, nil)
	pm := pool.NewManager(l, 0, nil)
	s := New(":0", l, eng, pm)
	return s.http.Handler, l
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp["total_stable"].(float64) != 1500 {
		t.Errorf("total_stable: expected 1500, got %v", resp["total_stable"])
	}
	if resp["oracle_rate"].(float64) != 128 {
		t.Errorf("oracle_rate: expected default 128, got %v", resp["oracle_rate"])
	}
}

func TestTransfer_PreCheckRejectsInsufficient(t *testing.T) {
	h, l := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/transfer",
		`{"from":"Bob","to":"Alice","asset":"stable","amount":5000}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body)
	}
	bob, _ := l.View("Bob")
	if bob.Stable != 500 {
		t.Errorf("balance mutated by rejected transfer: %v", bob.Stable)
	}
}

func TestTransfer_OK(t *testing.T) {
	h, l := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/transfer",
		`{"from":"Alice","to":"Bob","asset":"stable","amount":250}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	alice, _ := l.View("Alice")
	bob, _ := l.View("Bob")
	if alice.Stable != 750 || bob.Stable != 750 {
		t.Errorf("balances: expected (750, 750), got (%v, %v)", alice.Stable, bob.Stable)
	}
}

func TestTransfer_UnknownAsset(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/transfer",
		`{"from":"Alice","to":"Bob","asset":"doge","amount":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestConvert_ThenConvertBack(t *testing.T) {
	h, l := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/convert", `{"account":"Alice","amount":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("convert: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	alice, _ := l.View("Alice")
	if alice.Stable != 900 || alice.Pegged != 12800 || alice.Floating != 100 {
		t.Errorf("after convert: got %+v", alice)
	}

	rec = doJSON(t, h, http.MethodPost, "/convert_back", `{"account":"Alice","amount":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("convert_back: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	alice, _ = l.View("Alice")
	if alice.Stable != 1000 || alice.Pegged != 0 || alice.Floating != 0 {
		t.Errorf("after round trip: got %+v", alice)
	}
}

func TestConvert_InsufficientStable(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/convert", `{"account":"Bob","amount":9999}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body)
	}
}

func TestSetOracleRate(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPut, "/oracle/rate", `{"rate":150}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, h, http.MethodGet, "/oracle/rate", "")
	var resp map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["rate"] != 150 {
		t.Errorf("expected 150, got %v", resp["rate"])
	}
}

func TestPoolLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	// Mint pegged/floating for Alice first.
	if rec := doJSON(t, h, http.MethodPost, "/convert", `{"account":"Alice","amount":100}`); rec.Code != http.StatusOK {
		t.Fatalf("convert: %d: %s", rec.Code, rec.Body)
	}

	rec := doJSON(t, h, http.MethodPost, "/pools",
		`{"account":"Alice","pegged_amount":1000,"floating_amount":100,"lock_days":0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("provide: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	poolID := created["pool_id"]
	if poolID == "" {
		t.Fatal("expected a pool_id")
	}

	rec = doJSON(t, h, http.MethodPost, "/pools/"+poolID+"/swap",
		`{"account":"Alice","amount_in":50,"direction":"PEGGED_TO_FLOATING"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("swap: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var swapResp map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &swapResp); err != nil {
		t.Fatal(err)
	}
	if swapResp["amount_out"] <= 0 {
		t.Errorf("expected positive amount_out, got %v", swapResp["amount_out"])
	}

	rec = doJSON(t, h, http.MethodPost, "/pools/"+poolID+"/withdraw", `{"account":"Alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, h, http.MethodGet, "/pools/"+poolID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after withdrawal, got %d", rec.Code)
	}
}

func TestWithdraw_LockedPool(t *testing.T) {
	h, _ := newTestHandler(t)
	if rec := doJSON(t, h, http.MethodPost, "/convert", `{"account":"Alice","amount":100}`); rec.Code != http.StatusOK {
		t.Fatalf("convert: %d", rec.Code)
	}
	rec := doJSON(t, h, http.MethodPost, "/pools",
		`{"account":"Alice","pegged_amount":500,"floating_amount":50,"lock_days":30}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("provide: %d: %s", rec.Code, rec.Body)
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, h, http.MethodPost, "/pools/"+created["pool_id"]+"/withdraw", `{"account":"Alice"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for locked pool, got %d: %s", rec.Code, rec.Body)
	}
}
