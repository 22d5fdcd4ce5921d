package transform

import (
	"stream_insight/internal/app/payload"
	"stream_insight/internal/domain/entity"
)

// Price maps a raw price onto a PriceUpdate. The token address comes from the payload,
// else from fallbackToken; without either the update is unusable and nil is returned.
func Price(raw payload.RawPrice, fallbackToken string) *entity.PriceUpdate {
	token := orDefault(raw.TokenAddress, fallbackToken)
	if token == "" {
		return nil
	}
	ts := raw.Timestamp
	if ts <= 0 {
		ts = nowUnix()
	}
	return &entity.PriceUpdate{
		TokenAddress: token,
		Symbol:       orDefault(raw.Symbol, priceDefaults.Symbol),
		Price:        money(raw.Price, priceDefaults.Price),
		Change24h:    raw.Change24h,
		Timestamp:    ts,
	}
}

// Prices converts every usable raw price; items without a resolvable token are dropped.
func Prices(items []payload.RawPrice, fallbackToken string) []entity.PriceUpdate {
	out := make([]entity.PriceUpdate, 0, len(items))
	for _, raw := range items {
		if p := Price(raw, fallbackToken); p != nil {
			out = append(out, *p)
		}
	}
	return out
}
