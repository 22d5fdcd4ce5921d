package payload

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"stream_insight/internal/pkg/utils"
)

// Payload is the tagged-variant form of a stream message. Exactly one variant exists per Category.
type Payload interface {
	Category() Category
}

// RawLog is the chain log carried in the "result" field of an event envelope.
type RawLog struct {
	Address         string
	Topics          []string
	Data            string
	TransactionHash string
	Hash            string
	TxHash          string
}

// RawEvent is one decoded event envelope.
type RawEvent struct {
	// SubscriptionTxHash is set when the envelope's "subscription" field is an object with a transactionHash.
	SubscriptionTxHash string
	Log                RawLog
	// Envelope is the original object, kept for shape-tolerant consumers such as yield decoding.
	Envelope Object
}

// EventPayload holds one or more raw chain-log envelopes.
type EventPayload struct {
	Events []RawEvent
}

func (EventPayload) Category() Category { return BlockchainEvent }

// RawBalance is one balance-shaped item. BaseUnits is set when the balance came from
// "balanceRaw" or from a numeric "balance"; Balance is set when "balance" was a string.
type RawBalance struct {
	ContractAddress string
	Symbol          string
	Name            string
	BaseUnits       *big.Int
	Balance         string
	Value           string
	Price           string
	Change24h       float64
	Decimals        int
}

// BalancePayload holds one or more raw balances.
type BalancePayload struct {
	Items []RawBalance
}

func (BalancePayload) Category() Category { return Balance }

// RawPrice is one price-shaped item.
type RawPrice struct {
	TokenAddress string
	Symbol       string
	Price        string
	Change24h    float64
	Timestamp    int64
}

// PricePayload holds one or more raw prices.
type PricePayload struct {
	Items []RawPrice
}

func (PricePayload) Category() Category { return Price }

// UnknownPayload holds whatever objects were found in a message no rule matched.
type UnknownPayload struct {
	Objects []Object
}

func (UnknownPayload) Category() Category { return Unknown }

// RawYield is one yield-position-shaped item with alternative keys already resolved.
type RawYield struct {
	Protocol        string
	Token           string
	Deposited       string
	APY             string
	Earned          string
	DailyRewards    string
	ContractAddress string
	Topics          []string
}

// RawShapedTransaction is an already-shaped transaction object.
type RawShapedTransaction struct {
	Hash      string
	Type      string
	Token     string
	Amount    string
	Status    string
	Timestamp int64
	From      string
	To        string
}

// Decode classifies v and decodes it into the matching variant.
func Decode(v any) Payload {
	objs := Objects(v)
	switch Classify(v) {
	case BlockchainEvent:
		events := make([]RawEvent, 0, len(objs))
		for _, obj := range objs {
			events = append(events, decodeEvent(obj))
		}
		return EventPayload{Events: events}
	case Balance:
		items := make([]RawBalance, 0, len(objs))
		for _, obj := range objs {
			items = append(items, decodeBalance(obj))
		}
		return BalancePayload{Items: items}
	case Price:
		items := make([]RawPrice, 0, len(objs))
		for _, obj := range objs {
			items = append(items, DecodePrice(obj))
		}
		return PricePayload{Items: items}
	}
	return UnknownPayload{Objects: objs}
}

// Objects returns v as a list of objects: a single object, or the object elements of an array.
func Objects(v any) []Object {
	if obj, ok := AsObject(v); ok {
		return []Object{obj}
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Object, 0, len(arr))
	for _, el := range arr {
		if obj, ok := AsObject(el); ok {
			out = append(out, obj)
		}
	}
	return out
}

func decodeEvent(obj Object) RawEvent {
	ev := RawEvent{Envelope: obj}
	if sub, ok := obj.Object("subscription"); ok {
		ev.SubscriptionTxHash = sub.String("transactionHash")
	}
	result, ok := obj.Object("result")
	if !ok {
		return ev
	}
	ev.Log = RawLog{
		Address:         result.String("address"),
		Topics:          result.Strings("topics"),
		Data:            result.String("data"),
		TransactionHash: result.String("transactionHash"),
		Hash:            result.String("hash"),
		TxHash:          result.String("txHash"),
	}
	return ev
}

func decodeBalance(obj Object) RawBalance {
	raw := RawBalance{
		ContractAddress: obj.FirstString("contractAddress", "tokenAddress", "address"),
		Symbol:          obj.FirstString("symbol"),
		Name:            obj.FirstString("name"),
		Value:           moneyField(obj, "value"),
		Price:           moneyField(obj, "price"),
	}
	if change, ok := obj.Float("change24h"); ok {
		raw.Change24h = change
	}
	if dec, ok := obj.Decimal("decimals"); ok && dec.IsPositive() {
		raw.Decimals = int(dec.IntPart())
	}

	switch {
	case obj.Truthy("balanceRaw"):
		raw.BaseUnits = baseUnits(obj["balanceRaw"])
	case obj.Truthy("balance") && obj.IsNumber("balance"):
		raw.BaseUnits = baseUnits(obj["balance"])
	case obj.Truthy("balance"):
		raw.Balance = strings.TrimSpace(obj.String("balance"))
	}
	return raw
}

// DecodePrice decodes a price-shaped object.
func DecodePrice(obj Object) RawPrice {
	raw := RawPrice{
		TokenAddress: obj.FirstString("token", "tokenAddress"),
		Symbol:       obj.FirstString("symbol"),
		Price:        moneyField(obj, "price"),
	}
	if change, ok := obj.Float("change24h"); ok {
		raw.Change24h = change
	}
	if ts, ok := obj.Decimal("timestamp"); ok && ts.IsPositive() {
		raw.Timestamp = ts.IntPart()
	}
	return raw
}

// DecodeYield decodes a yield-position-shaped object, including chain-log envelopes
// whose contract address lives in "result.address".
func DecodeYield(obj Object) RawYield {
	raw := RawYield{
		Protocol:        obj.FirstString("protocol"),
		Token:           obj.FirstString("token", "symbol"),
		Deposited:       firstMoney(obj, "deposited", "amount"),
		APY:             firstPercent(obj, "apy", "apyPercent"),
		Earned:          firstMoney(obj, "earned", "rewards"),
		DailyRewards:    firstMoney(obj, "dailyRewards", "dailyReward"),
		ContractAddress: obj.FirstString("contractAddress", "address", "contract"),
		Topics:          obj.Strings("topics"),
	}
	if result, ok := obj.Object("result"); ok {
		if raw.ContractAddress == "" {
			raw.ContractAddress = result.FirstString("address")
		}
		raw.Topics = append(raw.Topics, result.Strings("topics")...)
	}
	return raw
}

// DecodeShapedTransaction decodes an already-shaped transaction object.
func DecodeShapedTransaction(obj Object) RawShapedTransaction {
	raw := RawShapedTransaction{
		Hash:   strings.TrimSpace(obj.FirstString("hash", "txHash", "transactionHash")),
		Type:   obj.FirstString("type"),
		Token:  obj.FirstString("token", "symbol"),
		Status: obj.FirstString("status"),
		From:   obj.FirstString("from"),
		To:     obj.FirstString("to"),
	}
	if obj.IsNumber("amount") {
		if d, ok := obj.Decimal("amount"); ok {
			raw.Amount = signedAmount(d)
		}
	} else {
		raw.Amount = obj.FirstString("amount")
	}
	if ts, ok := obj.Decimal("timestamp"); ok && ts.IsPositive() {
		raw.Timestamp = ts.IntPart()
	}
	return raw
}

func baseUnits(v any) *big.Int {
	switch t := v.(type) {
	case string:
		if n, ok := utils.ParseBigInt(strings.TrimSpace(t)); ok && n.Sign() >= 0 {
			return n
		}
		return nil
	}
	d, ok := toDecimal(v)
	if !ok || d.IsNegative() {
		return nil
	}
	return d.BigInt()
}

// moneyField returns a currency string for key. Strings pass through, numbers become "$<n>".
func moneyField(obj Object, key string) string {
	if !obj.Truthy(key) {
		return ""
	}
	if obj.IsNumber(key) {
		d, _ := obj.Decimal(key)
		return utils.FormatUSD(d)
	}
	return obj.String(key)
}

func firstMoney(obj Object, keys ...string) string {
	for _, key := range keys {
		if s := moneyField(obj, key); s != "" {
			return s
		}
	}
	return ""
}

func firstPercent(obj Object, keys ...string) string {
	for _, key := range keys {
		if !obj.Truthy(key) {
			continue
		}
		if obj.IsNumber(key) {
			d, _ := obj.Decimal(key)
			return d.String() + "%"
		}
		return obj.String(key)
	}
	return ""
}

func signedAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(4)
	}
	return "+" + d.StringFixed(4)
}
