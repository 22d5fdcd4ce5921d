package service

import (
	"strings"

	"stream_insight/internal/domain/entity"
)

// Placeholder data shown until the seed fetch or the stream delivers real data.

// PlaceholderBalances returns the fallback balances of a wallet.
func PlaceholderBalances(walletAddress string) []entity.TokenBalance {
	if walletAddress == "" {
		return nil
	}
	return []entity.TokenBalance{
		{
			OwnerAddress:    walletAddress,
			ContractAddress: entity.ZeroAddress,
			Symbol:          "STT",
			Name:            "Somnia Test Token",
			Balance:         "125.50",
			Value:           "$125.50",
			Price:           "$1.00",
			Decimals:        18,
		},
		{
			OwnerAddress:    walletAddress,
			ContractAddress: "0x0000000000000000000000000000000000000001",
			Symbol:          "ETH",
			Name:            "Ethereum",
			Balance:         "0.025",
			Value:           "$45.00",
			Price:           "$1,800.00",
			Change24h:       2.1,
			Decimals:        18,
		},
		{
			OwnerAddress:    walletAddress,
			ContractAddress: "0x0000000000000000000000000000000000000002",
			Symbol:          "USDC",
			Name:            "USD Coin",
			Balance:         "87.25",
			Value:           "$87.25",
			Price:           "$1.00",
			Decimals:        6,
		},
	}
}

// PlaceholderTransactions returns three fallback transactions, most recent first.
func PlaceholderTransactions(walletAddress string) []entity.Transaction {
	if walletAddress == "" {
		return nil
	}
	ts := now().Unix()
	return []entity.Transaction{
		{
			Hash:      "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef",
			Type:      entity.TxReceived,
			Token:     "STT",
			Amount:    "+25.50",
			Timestamp: ts - 120,
			Status:    entity.TxConfirmed,
			From:      "0x0000000000000000000000000000000000000001",
			To:        walletAddress,
		},
		{
			Hash:      "0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890",
			Type:      entity.TxSent,
			Token:     "USDC",
			Amount:    "-12.50",
			Timestamp: ts - 3600,
			Status:    entity.TxConfirmed,
			From:      walletAddress,
			To:        "0x0000000000000000000000000000000000000002",
		},
		{
			Hash:      "0x9876543210fedcba9876543210fedcba9876543210fedcba9876543210fedcba",
			Type:      entity.TxReceived,
			Token:     "ETH",
			Amount:    "+0.01",
			Timestamp: ts - 10800,
			Status:    entity.TxConfirmed,
			From:      "0x0000000000000000000000000000000000000003",
			To:        walletAddress,
		},
	}
}

// PlaceholderPositions returns the fallback yield positions of a wallet.
func PlaceholderPositions(walletAddress string) []entity.YieldPosition {
	if walletAddress == "" {
		return nil
	}
	return []entity.YieldPosition{{
		Protocol:        "Aave",
		Token:           "USDC",
		Deposited:       "$50.00",
		APY:             "4.5%",
		Earned:          "$0.23",
		DailyRewards:    "$0.01",
		ContractAddress: "0x0000000000000000000000000000000000000004",
	}}
}

var placeholderPriceTable = map[string]struct {
	symbol    string
	price     string
	change24h float64
}{
	"0x0000000000000000000000000000000000000000": {"ETH", "$1,800.00", 3.2},
	"0x0000000000000000000000000000000000000001": {"STT", "$1.00", 0},
	"0x0000000000000000000000000000000000000002": {"USDC", "$1.00", 0},
	"0x0000000000000000000000000000000000000003": {"LINK", "$15.00", 8.7},
	"0x0000000000000000000000000000000000000004": {"UNI", "$7.00", 4.3},
}

// PlaceholderPrices returns fallback prices for the known placeholder tokens among tokenAddresses.
func PlaceholderPrices(tokenAddresses []string) []entity.PriceUpdate {
	ts := now().Unix()
	out := make([]entity.PriceUpdate, 0, len(tokenAddresses))
	for _, addr := range tokenAddresses {
		row, ok := placeholderPriceTable[strings.ToLower(addr)]
		if !ok {
			continue
		}
		out = append(out, entity.PriceUpdate{
			TokenAddress: addr,
			Symbol:       row.symbol,
			Price:        row.price,
			Change24h:    row.change24h,
			Timestamp:    ts,
		})
	}
	return out
}
