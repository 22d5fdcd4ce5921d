package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// Stream payloads keep numbers as json.Number so base-unit integers survive decoding.
var payloadJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Parse decodes raw stream bytes into maps, slices and scalars.
// Malformed input yields nil, which classifies as Unknown.
func Parse(data []byte) any {
	var v any
	if err := payloadJSON.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

// Object is a decoded JSON object with typed, presence-aware accessors.
type Object map[string]any

// AsObject returns v as an Object when it is a JSON object.
func AsObject(v any) (Object, bool) {
	switch t := v.(type) {
	case Object:
		return t, t != nil
	case map[string]any:
		return Object(t), t != nil
	}
	return nil, false
}

// Has reports whether key is present, whatever its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Truthy reports whether key is present with a truthy value.
func (o Object) Truthy(key string) bool {
	v, ok := o[key]
	return ok && truthy(v)
}

// String returns the value at key rendered as a string, or "" when absent or not scalar.
func (o Object) String(key string) string {
	v, ok := o[key]
	if !ok {
		return ""
	}
	return scalarString(v)
}

// FirstString returns the first truthy string value among keys.
func (o Object) FirstString(keys ...string) string {
	for _, key := range keys {
		if !o.Truthy(key) {
			continue
		}
		if s := o.String(key); s != "" {
			return s
		}
	}
	return ""
}

// Decimal returns the numeric value at key, accepting JSON numbers and numeric strings.
func (o Object) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := o[key]
	if !ok {
		return decimal.Zero, false
	}
	return toDecimal(v)
}

// Float returns the numeric value at key as float64.
func (o Object) Float(key string) (float64, bool) {
	d, ok := o.Decimal(key)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// IsNumber reports whether the value at key is a JSON number rather than a string.
func (o Object) IsNumber(key string) bool {
	switch o[key].(type) {
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	}
	return false
}

// Object returns the nested object at key.
func (o Object) Object(key string) (Object, bool) {
	return AsObject(o[key])
}

// Strings returns the string elements of the array at key; other elements are skipped.
func (o Object) Strings(key string) []string {
	arr, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint32:
		return t != 0
	case uint64:
		return t != 0
	}
	// objects and arrays
	return true
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(t)
	}
	return ""
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case uint:
		return decimal.NewFromUint64(uint64(t)), true
	case uint32:
		return decimal.NewFromUint64(uint64(t)), true
	case uint64:
		return decimal.NewFromUint64(t), true
	}
	return decimal.Zero, false
}
