package model

// DefaultOracleRate is the stable→pegged rate used when no oracle value has
// been supplied yet.
const DefaultOracleRate = 128.0

// PegConfig is the process-wide peg state. Exactly one instance exists;
// it is created on first access and mutated only by the conversion engine.
type PegConfig struct {
	OracleRate        float64 `json:"oracle_rate"`
	BurntStableSupply float64 `json:"burnt_stable_supply"`
}

// NewPegConfig returns a PegConfig with the documented defaults.
func NewPegConfig() *PegConfig {
	return &PegConfig{OracleRate: DefaultOracleRate, BurntStableSupply: 0.0}
}
