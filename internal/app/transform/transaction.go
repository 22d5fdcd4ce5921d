package transform

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stream_insight/internal/app/payload"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/utils"
)

// minAmountDataLen is "0x" plus one 32-byte word.
const minAmountDataLen = 66

// TransactionFromEvent builds a Transaction from a raw chain-log envelope.
// It returns nil when no usable hash can be found.
func TransactionFromEvent(ev payload.RawEvent) *entity.Transaction {
	hash := canonicalHash(firstNonEmpty(ev.Log.TransactionHash, ev.Log.Hash, ev.Log.TxHash, ev.SubscriptionTxHash))
	if !entity.IsValidTxHash(hash) {
		return nil
	}

	return &entity.Transaction{
		Hash:      hash,
		Type:      transactionDefaults.Type,
		Token:     transactionDefaults.Token,
		Amount:    amountFromData(ev.Log.Data),
		Timestamp: nowUnix(),
		Status:    transactionDefaults.Status,
		From:      topicAddress(ev.Log.Topics, 1),
		To:        topicAddress(ev.Log.Topics, 2),
	}
}

// TransactionFromShape fills defaults into an already-shaped transaction.
// It returns nil when the hash is missing.
func TransactionFromShape(raw payload.RawShapedTransaction) *entity.Transaction {
	hash := canonicalHash(raw.Hash)
	if !entity.IsValidTxHash(hash) {
		return nil
	}

	txType, ok := entity.ParseTransactionType(raw.Type)
	if !ok {
		txType = transactionDefaults.Type
	}
	status, ok := entity.ParseTransactionStatus(raw.Status)
	if !ok {
		status = transactionDefaults.Status
	}
	ts := raw.Timestamp
	if ts <= 0 {
		ts = nowUnix()
	}

	return &entity.Transaction{
		Hash:      hash,
		Type:      txType,
		Token:     orDefault(raw.Token, transactionDefaults.Token),
		Amount:    orDefault(raw.Amount, transactionDefaults.Amount),
		Timestamp: ts,
		Status:    status,
		From:      raw.From,
		To:        raw.To,
	}
}

func canonicalHash(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}
	if !strings.HasPrefix(h, "0x") && !strings.HasPrefix(h, "0X") {
		return "0x" + h
	}
	return "0x" + h[2:]
}

// topicAddress extracts an address from topics[i]: either a plain 20-byte address
// or a 32-byte word whose last 20 bytes are an address.
func topicAddress(topics []string, i int) string {
	if i >= len(topics) {
		return ""
	}
	topic := topics[i]
	if !strings.HasPrefix(topic, "0x") {
		return ""
	}
	if len(topic) == 66 {
		candidate := "0x" + topic[len(topic)-40:]
		if common.IsHexAddress(candidate) {
			return candidate
		}
		return ""
	}
	if common.IsHexAddress(topic) {
		return topic
	}
	return ""
}

func amountFromData(data string) string {
	if len(data) < minAmountDataLen || !strings.HasPrefix(data, "0x") {
		return transactionDefaults.Amount
	}
	wei, ok := new(big.Int).SetString(data[2:], 16)
	if !ok || wei.Sign() <= 0 {
		return transactionDefaults.Amount
	}
	value := utils.ScaleBaseUnits(wei, nativeDecimals)
	if !value.GreaterThan(amountNoiseFloor) {
		return transactionDefaults.Amount
	}
	return "+" + value.StringFixed(4)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
