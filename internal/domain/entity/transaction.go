package entity

import "strings"

// TransactionType is the direction or purpose of a transaction.
type TransactionType string

const (
	TxReceived TransactionType = "Received"
	TxSent     TransactionType = "Sent"
	TxSwap     TransactionType = "Swap"
	TxStake    TransactionType = "Stake"
	TxUnstake  TransactionType = "Unstake"
)

// TransactionStatus is the settlement status of a transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is a wallet transaction as shown in the activity feed.
type Transaction struct {
	Hash      string            `json:"hash"`
	Type      TransactionType   `json:"type"`
	Token     string            `json:"token"`
	Amount    string            `json:"amount"`
	Timestamp int64             `json:"timestamp"`
	Status    TransactionStatus `json:"status"`
	From      string            `json:"from,omitempty"`
	To        string            `json:"to,omitempty"`
}

// ParseTransactionType maps a raw type string to a known TransactionType.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case TxReceived, TxSent, TxSwap, TxStake, TxUnstake:
		return TransactionType(s), true
	}
	return "", false
}

// ParseTransactionStatus maps a raw status string to a known TransactionStatus.
func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch TransactionStatus(strings.ToLower(s)) {
	case TxPending, TxConfirmed, TxFailed:
		return TransactionStatus(strings.ToLower(s)), true
	}
	return "", false
}

// IsValidTxHash reports whether h can identify a transaction: 0x-prefixed and not empty after the prefix.
func IsValidTxHash(h string) bool {
	return len(h) > 2 && strings.HasPrefix(h, "0x")
}
