// Package oracle supplies the external stable→pegged rate.
package oracle

// Fetcher defines the interface for fetching the oracle rate.
type Fetcher interface {
	FetchRate(pair string) (float64, error)
	Name() string
}

// StaticFetcher returns a fixed rate. Used when no rate API is configured
// and in tests.
type StaticFetcher struct {
	Rate float64
}

func (s *StaticFetcher) Name() string { return "static" }

func (s *StaticFetcher) FetchRate(_ string) (float64, error) {
	return s.Rate, nil
}
