package transform

import (
	"strings"

	"stream_insight/internal/app/payload"
	"stream_insight/internal/domain/entity"
)

// YieldPositions converts raw yield items. Every item produces a position; the protocol name is never empty.
func YieldPositions(items []payload.RawYield) []entity.YieldPosition {
	out := make([]entity.YieldPosition, 0, len(items))
	for _, raw := range items {
		out = append(out, YieldPosition(raw))
	}
	return out
}

// YieldPosition converts one raw yield item.
func YieldPosition(raw payload.RawYield) entity.YieldPosition {
	return entity.YieldPosition{
		Protocol:        ResolveProtocol(raw),
		Token:           orDefault(raw.Token, yieldDefaults.Token),
		Deposited:       money(raw.Deposited, yieldDefaults.Deposited),
		APY:             orDefault(raw.APY, yieldDefaults.APY),
		Earned:          money(raw.Earned, yieldDefaults.Earned),
		DailyRewards:    money(raw.DailyRewards, yieldDefaults.DailyRewards),
		ContractAddress: raw.ContractAddress,
	}
}

// ResolveProtocol derives a protocol name: explicit field, known fragment in the
// contract address, known fragment in topics, shortened-address pool name,
// token-based name, then a fixed label.
func ResolveProtocol(raw payload.RawYield) string {
	if raw.Protocol != "" && raw.Protocol != unknownProtocol {
		return raw.Protocol
	}
	if name, ok := matchProtocol(raw.ContractAddress); ok {
		return name
	}
	for _, topic := range raw.Topics {
		if name, ok := matchProtocol(topic); ok {
			return name
		}
	}

	addr := raw.ContractAddress
	if addr != "0x" && len(addr) > 10 {
		return "Staking Pool (" + strings.ToUpper(addr[2:10]) + ")"
	}
	if symbol := strings.ToUpper(raw.Token); symbol != "" && symbol != NativeSymbol {
		return symbol + " Staking"
	}
	return stakingPositionLabel
}

func matchProtocol(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, p := range knownProtocols {
		if strings.Contains(lower, p.fragment) {
			return p.name, true
		}
	}
	return "", false
}
