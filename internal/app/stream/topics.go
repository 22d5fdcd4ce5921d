package stream

import (
	"github.com/ethereum/go-ethereum/common"

	"stream_insight/internal/app/payload"
	"stream_insight/internal/app/transform"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/metrics"
)

// walletTopic is the 32-byte log topic matching an indexed wallet address.
func walletTopic(walletAddress string) string {
	return common.BytesToHash(common.HexToAddress(walletAddress).Bytes()).Hex()
}

func walletDescriptor(kind entity.TopicKind, walletAddress string, onlyChanges bool) entity.TopicDescriptor {
	return entity.TopicDescriptor{
		Kind:            kind,
		Key:             entity.WalletTopicKey(kind, walletAddress),
		Context:         "wallet-" + string(kind),
		Topics:          [][]string{nil, nil, {walletTopic(walletAddress)}},
		OnlyPushChanges: onlyChanges,
	}
}

// SubscribeToWalletBalances streams balance lists for a wallet.
func (m *Manager) SubscribeToWalletBalances(walletAddress string, onBalances func([]entity.TokenBalance)) CancelFunc {
	topic := walletDescriptor(entity.TopicBalances, walletAddress, true)
	return m.subscribe(topic, func(data []byte) {
		v, category := m.classify(topic, data)
		p, ok := payload.Decode(v).(payload.BalancePayload)
		if !ok {
			m.mismatch(topic, category)
			return
		}
		balances := transform.Balances(p.Items, walletAddress)
		if len(balances) == 0 {
			m.invalid(topic, "balance")
			return
		}
		onBalances(balances)
	})
}

// SubscribeToTokenPrices streams price updates for a set of tokens. A payload without a
// token address is attributed to the subscribed token when exactly one was requested.
func (m *Manager) SubscribeToTokenPrices(tokenAddresses []string, onPrice func(entity.PriceUpdate)) CancelFunc {
	topic := entity.TopicDescriptor{
		Kind:            entity.TopicPrices,
		Key:             entity.PricesTopicKey(tokenAddresses),
		Context:         "token-prices",
		Addresses:       append([]string(nil), tokenAddresses...),
		OnlyPushChanges: true,
	}
	fallback := ""
	if len(tokenAddresses) == 1 {
		fallback = tokenAddresses[0]
	}
	return m.subscribe(topic, func(data []byte) {
		v, category := m.classify(topic, data)
		p, ok := payload.Decode(v).(payload.PricePayload)
		if !ok {
			m.mismatch(topic, category)
			return
		}
		prices := transform.Prices(p.Items, fallback)
		if len(prices) == 0 {
			m.invalid(topic, "price")
			return
		}
		for _, price := range prices {
			onPrice(price)
		}
	})
}

// SubscribeToTransactions streams transactions touching a wallet. Chain-log envelopes and
// already-shaped transaction objects are both accepted.
func (m *Manager) SubscribeToTransactions(walletAddress string, onTx func(entity.Transaction)) CancelFunc {
	topic := walletDescriptor(entity.TopicTransactions, walletAddress, false)
	return m.subscribe(topic, func(data []byte) {
		v, _ := m.classify(topic, data)
		var txs []entity.Transaction
		if p, ok := payload.Decode(v).(payload.EventPayload); ok {
			for _, ev := range p.Events {
				if tx := transform.TransactionFromEvent(ev); tx != nil {
					txs = append(txs, *tx)
				}
			}
		} else {
			for _, obj := range payload.Objects(v) {
				if tx := transform.TransactionFromShape(payload.DecodeShapedTransaction(obj)); tx != nil {
					txs = append(txs, *tx)
				}
			}
		}
		if len(txs) == 0 {
			m.invalid(topic, "transaction")
			return
		}
		for _, tx := range txs {
			onTx(tx)
		}
	})
}

// SubscribeToYieldPositions streams yield positions of a wallet. Any object-shaped payload
// is accepted and resolved to a position.
func (m *Manager) SubscribeToYieldPositions(walletAddress string, onPositions func([]entity.YieldPosition)) CancelFunc {
	topic := walletDescriptor(entity.TopicYield, walletAddress, true)
	return m.subscribe(topic, func(data []byte) {
		v, _ := m.classify(topic, data)
		objs := payload.Objects(v)
		items := make([]payload.RawYield, 0, len(objs))
		for _, obj := range objs {
			items = append(items, payload.DecodeYield(obj))
		}
		positions := transform.YieldPositions(items)
		if len(positions) == 0 {
			m.invalid(topic, "yield_position")
			return
		}
		onPositions(positions)
	})
}

func (m *Manager) classify(topic entity.TopicDescriptor, data []byte) (any, payload.Category) {
	v := payload.Parse(data)
	category := payload.Classify(v)
	metrics.PayloadsTotal.WithLabelValues(string(topic.Kind), category.String()).Inc()
	return v, category
}

func (m *Manager) mismatch(topic entity.TopicDescriptor, category payload.Category) {
	m.logger.Debug("Payload category does not match topic, dropped", "topic", topic.Key, "category", category.String())
}

func (m *Manager) invalid(topic entity.TopicDescriptor, kind string) {
	metrics.InvalidEntitiesTotal.WithLabelValues(kind).Inc()
	m.logger.Debug("Payload produced no usable entity, dropped", "topic", topic.Key, "kind", kind)
}
