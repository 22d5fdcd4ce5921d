package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"stream_insight/internal/app/payload"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/utils"
)

// Balances converts raw balance items into TokenBalances owned by owner.
func Balances(items []payload.RawBalance, owner string) []entity.TokenBalance {
	out := make([]entity.TokenBalance, 0, len(items))
	for _, raw := range items {
		out = append(out, Balance(raw, owner))
	}
	return out
}

// Balance converts one raw balance item.
func Balance(raw payload.RawBalance, owner string) entity.TokenBalance {
	symbol := orDefault(raw.Symbol, balanceDefaults.Symbol)
	amount := resolveAmount(raw)
	price := money(raw.Price, balanceDefaults.Price)

	// An empty or unparsable value is derived from amount and price.
	value := money(raw.Value, "")
	if value == "" {
		unitPrice, ok := utils.TryParseMoney(price)
		if !ok {
			unitPrice = decimal.NewFromInt(1)
		}
		value = utils.FormatUSDCents(amount.Mul(unitPrice))
	}

	decimals := raw.Decimals
	if decimals <= 0 {
		decimals = balanceDefaults.Decimals
	}

	return entity.TokenBalance{
		OwnerAddress:    owner,
		ContractAddress: orDefault(raw.ContractAddress, balanceDefaults.ContractAddress),
		Symbol:          symbol,
		Name:            orDefault(raw.Name, symbol+balanceDefaults.NameSuffix),
		Balance:         amount.Round(balanceDisplayDecimals).String(),
		Value:           value,
		Price:           price,
		Change24h:       raw.Change24h,
		Decimals:        decimals,
	}
}

// resolveAmount prefers base units scaled by 18 decimals, then a plain decimal string.
// Negative or unparsable balances resolve to zero.
func resolveAmount(raw payload.RawBalance) decimal.Decimal {
	if raw.BaseUnits != nil {
		return utils.ScaleBaseUnits(raw.BaseUnits, nativeDecimals)
	}
	if raw.Balance == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw.Balance, ",", ""))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
