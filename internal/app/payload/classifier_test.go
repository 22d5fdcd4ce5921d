package payload

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Category
	}{
		{"nil", nil, Unknown},
		{"string", "hello", Unknown},
		{"number", 42.0, Unknown},
		{"bool", true, Unknown},
		{"empty object", map[string]any{}, Unknown},
		{"empty array", []any{}, Unknown},
		{"array of primitives", []any{1.0, "x"}, Unknown},
		{"nil map", map[string]any(nil), Unknown},
		{"NaN", math.NaN(), Unknown},
		{"event envelope", map[string]any{"subscription": "0x1", "result": map[string]any{"address": "0xabc"}}, BlockchainEvent},
		{"falsy result falls through to balance", map[string]any{"result": "", "balance": "1"}, Balance},
		{"zero result falls through to price", map[string]any{"result": json.Number("0"), "price": "$1"}, Price},
		{"event wins over balance", map[string]any{"result": true, "balance": "1"}, BlockchainEvent},
		{"balanceRaw", map[string]any{"balanceRaw": "1000"}, Balance},
		{"address only", map[string]any{"address": "0xabc"}, Balance},
		{"balance present but null", map[string]any{"balance": nil}, Balance},
		{"balance wins over price", map[string]any{"balance": "2", "price": "$1.00"}, Balance},
		{"price", map[string]any{"price": "$2.00"}, Price},
		{"symbol", map[string]any{"symbol": "ETH"}, Price},
		{"shaped transaction", map[string]any{"hash": "0x01", "type": "Sent"}, Unknown},
		{"array of balances", []any{map[string]any{"balance": "1"}, map[string]any{"address": "0x1"}}, Balance},
		{"array of mixed categories", []any{map[string]any{"balance": "1"}, map[string]any{"price": "$1"}}, Unknown},
		{"array with a primitive", []any{map[string]any{"balance": "1"}, "oops"}, Unknown},
		{"Object type", Object{"price": "$3"}, Price},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, Classify(tt.input))
			})
		})
	}
}

func TestClassify_ParsedInput(t *testing.T) {
	inputs := map[string]Category{
		`{"subscription":"0xabc","result":{"transactionHash":"0x1"}}`: BlockchainEvent,
		`{"balanceRaw":"1000000000000000000","price":"$2.00"}`:        Balance,
		`{"symbol":"STT","price":"$1.00","change24h":2.5}`:            Price,
		`[1,2,3]`:      Unknown,
		`null`:         Unknown,
		`not json`:     Unknown,
		`"quoted"`:     Unknown,
		`{"a":{}}`:     Unknown,
		``:             Unknown,
		`{"result":0}`: Unknown,
	}
	for raw, want := range inputs {
		assert.Equal(t, want, Classify(Parse([]byte(raw))), raw)
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "blockchain_event", BlockchainEvent.String())
	assert.Equal(t, "balance", Balance.String())
	assert.Equal(t, "price", Price.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Category(99).String())
}
