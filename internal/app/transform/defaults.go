// Package transform converts decoded stream payloads into canonical entities.
// Transformers never panic and never return errors: an unusable payload yields nil or an empty slice.
package transform

import (
	"time"

	"github.com/shopspring/decimal"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/utils"
)

// NativeSymbol is the symbol of the chain's native token.
const NativeSymbol = "STT"

// nativeDecimals is the scaling applied to base-unit balances and log amounts.
const nativeDecimals = 18

// balanceDisplayDecimals caps the fraction digits of a rendered balance.
const balanceDisplayDecimals = 6

var balanceDefaults = struct {
	Symbol          string
	NameSuffix      string
	Price           string
	Decimals        int
	ContractAddress string
}{
	Symbol:          NativeSymbol,
	NameSuffix:      " Token",
	Price:           "$1.00",
	Decimals:        18,
	ContractAddress: entity.ZeroAddress,
}

var transactionDefaults = struct {
	Type   entity.TransactionType
	Token  string
	Amount string
	Status entity.TransactionStatus
}{
	Type:   entity.TxReceived,
	Token:  NativeSymbol,
	Amount: "+0.00",
	Status: entity.TxConfirmed,
}

// amountNoiseFloor hides dust amounts decoded from log data.
var amountNoiseFloor = decimal.New(1, -6)

var yieldDefaults = struct {
	Token        string
	Deposited    string
	APY          string
	Earned       string
	DailyRewards string
}{
	Token:        NativeSymbol,
	Deposited:    "$0.00",
	APY:          "0%",
	Earned:       "$0.00",
	DailyRewards: "$0.00",
}

var priceDefaults = struct {
	Symbol string
	Price  string
}{
	Symbol: "TOKEN",
	Price:  "$0.00",
}

// knownProtocols is matched in order against lower-cased contract addresses and topics.
var knownProtocols = []struct {
	fragment string
	name     string
}{
	{"curve", "Curve Finance"},
	{"uniswap", "Uniswap"},
	{"balancer", "Balancer"},
	{"yearn", "Yearn Finance"},
	{"aave", "Aave"},
	{"compound", "Compound"},
	{"sushiswap", "SushiSwap"},
}

const (
	unknownProtocol      = "Unknown"
	stakingPositionLabel = "Staking Position"
)

// nowUnix is swapped in tests.
var nowUnix = func() int64 { return time.Now().Unix() }

// money renders v as "$<number>", falling back to def when v is empty or unparsable.
func money(v, def string) string {
	d, ok := utils.TryParseMoney(v)
	if !ok {
		return def
	}
	return utils.FormatUSD(d)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
