package entity

// DEXTokenPair is the wrapped response shape of the DEXScreener pairs endpoints.
type DEXTokenPair struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []PairData `json:"pairs"`
}

// PairData is one DEXScreener trading pair. Only the fields used for pricing are decoded.
type PairData struct {
	ChainID     string          `json:"chainId"`
	DexID       string          `json:"dexId"`
	PairAddress string          `json:"pairAddress"`
	BaseToken   DEXToken        `json:"baseToken"`
	QuoteToken  DEXToken        `json:"quoteToken"`
	PriceUsd    string          `json:"priceUsd"`
	PriceChange PairPriceChange `json:"priceChange"`
	Liquidity   *DEXLiquidity   `json:"liquidity"`
}

// DEXToken represents a token in a trading pair.
type DEXToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// DEXLiquidity is the pooled liquidity of a pair.
type DEXLiquidity struct {
	Usd float64 `json:"usd"`
}

// PairPriceChange holds percentage price moves per window.
type PairPriceChange struct {
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// LiquidityUSD returns the pair liquidity or 0 when DEXScreener omitted it.
func (p PairData) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}
