// Package tokenloader reads the tracked token catalog.
package tokenloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"

	"stream_insight/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Skipped describes a catalog entry that was not loaded.
type Skipped struct {
	Index  int
	Token  entity.TokenInfo
	Reason string
}

// LoadTokens reads a JSON array of tokens from path and keeps the entries that belong to
// chainID and carry a valid address. Duplicate addresses keep the first entry.
// A missing file yields an empty catalog.
func LoadTokens(path string, chainID uint64) ([]entity.TokenInfo, []Skipped, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []entity.TokenInfo{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var tokensInFile []entity.TokenInfo
	if err := json.Unmarshal(data, &tokensInFile); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal tokens from %s: %w", path, err)
	}

	valid := make([]entity.TokenInfo, 0, len(tokensInFile))
	var skipped []Skipped
	seen := make(map[string]struct{}, len(tokensInFile))
	for i, token := range tokensInFile {
		switch {
		case !common.IsHexAddress(token.Address):
			skipped = append(skipped, Skipped{Index: i, Token: token, Reason: "invalid address"})
			continue
		case token.ChainID != chainID:
			skipped = append(skipped, Skipped{Index: i, Token: token, Reason: fmt.Sprintf("chain id %d, expected %d", token.ChainID, chainID)})
			continue
		}
		key := strings.ToLower(token.Address)
		if _, dup := seen[key]; dup {
			skipped = append(skipped, Skipped{Index: i, Token: token, Reason: "duplicate address"})
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, token)
	}
	return valid, skipped, nil
}
