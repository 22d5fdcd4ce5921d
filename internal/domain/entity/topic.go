package entity

import (
	"fmt"
	"strings"
)

// TopicKind identifies the entity type a stream subscription produces.
type TopicKind string

const (
	TopicBalances     TopicKind = "balances"
	TopicPrices       TopicKind = "prices"
	TopicTransactions TopicKind = "transactions"
	TopicYield        TopicKind = "yield"
)

// TopicDescriptor describes one logical subscription on the data stream.
// Context, Addresses, Topics and OnlyPushChanges are interpreted by the stream client only.
type TopicDescriptor struct {
	Kind            TopicKind  `json:"kind"`
	Key             string     `json:"key"`
	Context         string     `json:"context"`
	Addresses       []string   `json:"addresses,omitempty"`
	Topics          [][]string `json:"topics,omitempty"`
	OnlyPushChanges bool       `json:"onlyPushChanges"`
}

// WalletTopicKey returns the topic key for a per-wallet topic, e.g. "wallet:0xabc:balances".
func WalletTopicKey(kind TopicKind, walletAddress string) string {
	return fmt.Sprintf("wallet:%s:%s", walletAddress, kind)
}

// PricesTopicKey returns the topic key for a price subscription over the given tokens.
func PricesTopicKey(tokenAddresses []string) string {
	return "prices:" + strings.Join(tokenAddresses, ",")
}
