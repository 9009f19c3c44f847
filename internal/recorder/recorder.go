package recorder

import "FluxLedger/internal/model"

// ConversionEvent records one forward or backward conversion.
type ConversionEvent struct {
	Account       string
	Direction     string // "FORWARD" or "BACKWARD"
	StableAmount  float64
	OracleRate    float64
	FluxInfluence float64
	ProtocolRate  float64
	BurntAfter    float64
}

// TransferEvent records a balance move between two accounts.
type TransferEvent struct {
	From   string
	To     string
	Asset  model.Asset
	Amount float64
}

// SwapEvent records one pool swap.
type SwapEvent struct {
	PoolID        string
	Account       string
	Direction     string // "PEGGED_TO_FLOATING" or "FLOATING_TO_PEGGED"
	AmountIn      float64
	Fee           float64
	AmountOut     float64
	PeggedAfter   float64
	FloatingAfter float64
}

// PoolEvent records pool creation or withdrawal.
type PoolEvent struct {
	PoolID    string
	Account   string
	EventType string // "PROVIDE" or "WITHDRAW"
	Pegged    float64
	Floating  float64
}

// OracleEvent records an oracle rate change.
type OracleEvent struct {
	OldRate float64
	NewRate float64
	Source  string // "API", "FETCHER", "DEFAULT"
}

// SupplySnapshot records the protocol-wide state at a point in time.
type SupplySnapshot struct {
	TotalStable   float64
	TotalPegged   float64
	TotalFloating float64
	BurntStable   float64
	Rates         model.Rates
}

// Recorder journals engine activity for later analysis. Failures are logged
// and ignored by callers; the journal never gates a mutation.
type Recorder interface {
	RecordConversion(evt *ConversionEvent) error
	RecordTransfer(evt *TransferEvent) error
	RecordSwap(evt *SwapEvent) error
	RecordPoolEvent(evt *PoolEvent) error
	RecordOracleUpdate(evt *OracleEvent) error
	RecordSnapshot(snap *SupplySnapshot) error
	Close() error
}
