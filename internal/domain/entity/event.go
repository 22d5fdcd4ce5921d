package entity

// EventKind identifies what changed in a wallet session.
type EventKind string

const (
	EventBalances     EventKind = "balances"
	EventTransactions EventKind = "transactions"
	EventYield        EventKind = "yield"
	EventPrices       EventKind = "prices"
	EventConnection   EventKind = "connection"
	EventStatus       EventKind = "status"
)

// StateEvent is emitted whenever the reconciled state or the connection of a session changes.
type StateEvent struct {
	Wallet     string          `json:"wallet"`
	Kind       EventKind       `json:"kind"`
	Source     SourceTier      `json:"source,omitempty"`
	Connection ConnectionState `json:"connection,omitempty"`
	Status     DataStatus      `json:"status,omitempty"`
	At         int64           `json:"at"`
}
