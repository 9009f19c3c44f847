package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordConversion(_ *ConversionEvent) error { return nil }
func (n *NoopRecorder) RecordTransfer(_ *TransferEvent) error     { return nil }
func (n *NoopRecorder) RecordSwap(_ *SwapEvent) error             { return nil }
func (n *NoopRecorder) RecordPoolEvent(_ *PoolEvent) error        { return nil }
func (n *NoopRecorder) RecordOracleUpdate(_ *OracleEvent) error   { return nil }
func (n *NoopRecorder) RecordSnapshot(_ *SupplySnapshot) error    { return nil }
func (n *NoopRecorder) Close() error                              { return nil }
