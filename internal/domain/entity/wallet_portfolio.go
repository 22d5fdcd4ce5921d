package entity

import "github.com/shopspring/decimal"

// WalletPortfolio is a point-in-time copy of the reconciled state of one wallet.
type WalletPortfolio struct {
	WalletAddress       string                 `json:"walletAddress"`
	Balances            []TokenBalance         `json:"balances"`
	Transactions        []Transaction          `json:"transactions"`
	YieldPositions      []YieldPosition        `json:"yieldPositions"`
	Prices              map[string]PriceUpdate `json:"prices"`
	TotalValueUSD       decimal.Decimal        `json:"totalValueUSD"`
	WeightedChange24h   float64                `json:"weightedChange24h"`
	TotalYieldDeposited decimal.Decimal        `json:"totalYieldDeposited"`
	Status              CollectionStatus       `json:"status"`
	Sources             CollectionSources      `json:"sources"`
	Connection          ConnectionState        `json:"connection"`
	UpdatedAt           int64                  `json:"updatedAt"`
}

// CollectionStatus holds the loading status of each collection.
type CollectionStatus struct {
	Balances     DataStatus `json:"balances"`
	Transactions DataStatus `json:"transactions"`
	Yield        DataStatus `json:"yield"`
	Prices       DataStatus `json:"prices"`
}

// CollectionSources holds the source tier each collection currently reflects.
type CollectionSources struct {
	Balances     SourceTier `json:"balances"`
	Transactions SourceTier `json:"transactions"`
	Yield        SourceTier `json:"yield"`
	Prices       SourceTier `json:"prices"`
}

// UsingPlaceholderData reports whether any collection is still showing mock data.
func (p WalletPortfolio) UsingPlaceholderData() bool {
	s := p.Sources
	return s.Balances == TierPlaceholder || s.Transactions == TierPlaceholder ||
		s.Yield == TierPlaceholder || s.Prices == TierPlaceholder
}
