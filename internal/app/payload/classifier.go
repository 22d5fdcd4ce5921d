// Package payload turns loosely-typed stream messages into typed raw variants.
package payload

// Category is the semantic kind of a stream payload.
type Category int

const (
	Unknown Category = iota
	BlockchainEvent
	Balance
	Price
)

func (c Category) String() string {
	switch c {
	case BlockchainEvent:
		return "blockchain_event"
	case Balance:
		return "balance"
	case Price:
		return "price"
	default:
		return "unknown"
	}
}

// Classify determines the category of an arbitrary decoded value. Rules, first match wins:
// an object with a truthy "result" is a BlockchainEvent; one with "balance", "balanceRaw"
// or "address" is a Balance; one with "price" or "symbol" is a Price; anything else is Unknown.
// A non-empty array takes the category of its elements when they are all objects of the same category.
func Classify(v any) Category {
	if obj, ok := AsObject(v); ok {
		return classifyObject(obj)
	}

	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return Unknown
	}
	category := Unknown
	for i, el := range arr {
		obj, ok := AsObject(el)
		if !ok {
			return Unknown
		}
		c := classifyObject(obj)
		if i == 0 {
			category = c
			continue
		}
		if c != category {
			return Unknown
		}
	}
	return category
}

func classifyObject(obj Object) Category {
	switch {
	case obj.Truthy("result"):
		return BlockchainEvent
	case obj.Has("balance") || obj.Has("balanceRaw") || obj.Has("address"):
		return Balance
	case obj.Has("price") || obj.Has("symbol"):
		return Price
	}
	return Unknown
}
