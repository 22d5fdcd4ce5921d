package entity

// SourceTier ranks where a piece of wallet data came from.
// Placeholder data is mock data, Seed and Stream are real data.
type SourceTier int

const (
	TierNone SourceTier = iota
	TierPlaceholder
	TierSeed
	TierStream
)

// IsReal reports whether the tier carries data read from the chain or the stream.
func (t SourceTier) IsReal() bool {
	return t >= TierSeed
}

func (t SourceTier) String() string {
	switch t {
	case TierPlaceholder:
		return "placeholder"
	case TierSeed:
		return "seed"
	case TierStream:
		return "stream"
	default:
		return "none"
	}
}

// MarshalText renders the tier by name in JSON payloads.
func (t SourceTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name written by MarshalText.
func (t *SourceTier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "placeholder":
		*t = TierPlaceholder
	case "seed":
		*t = TierSeed
	case "stream":
		*t = TierStream
	default:
		*t = TierNone
	}
	return nil
}
