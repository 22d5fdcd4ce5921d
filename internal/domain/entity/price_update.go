package entity

// PriceUpdate is the latest known USD price of a token, keyed by TokenAddress.
// It is also the price-feed contract consumed by alerting.
type PriceUpdate struct {
	TokenAddress string  `json:"token"`
	Symbol       string  `json:"symbol"`
	Price        string  `json:"price"`
	Change24h    float64 `json:"change24h"`
	Timestamp    int64   `json:"timestamp"`
}
