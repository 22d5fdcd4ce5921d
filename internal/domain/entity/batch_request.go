package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native (STT) balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests an ERC-20 balanceOf for a wallet.
	TokenBalanceRequest
)

// ZeroAddress is used as the contract address of the native token.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem is a single element of a JSON-RPC balance batch.
type BalanceRequestItem struct {
	ID            string
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	TokenName     string
	TokenDecimals uint8
}

// BalanceResultItem is the outcome of one BalanceRequestItem. Error is set per item,
// a failed element never fails the whole batch.
type BalanceResultItem struct {
	RequestID        string
	WalletAddress    string
	TokenAddress     string
	TokenSymbol      string
	TokenName        string
	Decimals         uint8
	IsNative         bool
	Balance          *big.Int
	FormattedBalance string
	Error            error
}
