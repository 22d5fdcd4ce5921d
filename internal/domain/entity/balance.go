package entity

import "strings"

// TokenBalance is the canonical balance of one token held by a wallet.
// Balance is a non-negative decimal string, Value and Price use the "$<number>" currency format.
type TokenBalance struct {
	OwnerAddress    string  `json:"ownerAddress"`
	ContractAddress string  `json:"address"`
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	Balance         string  `json:"balance"`
	Value           string  `json:"value"`
	Price           string  `json:"price"`
	Change24h       float64 `json:"change24h"`
	Decimals        int     `json:"decimals"`
}

// Key returns the de-duplication key of the balance within one owner.
// The contract address is compared case-insensitively.
func (b TokenBalance) Key() string {
	return strings.ToLower(b.ContractAddress) + "|" + b.Symbol
}
