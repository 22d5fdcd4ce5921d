// Package walletloader reads the list of wallets tracked from startup.
package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// InvalidLine is a non-empty, non-comment line that is not a wallet address.
type InvalidLine struct {
	Number int
	Text   string
}

// LoadWallets reads one address per line. Blank lines and lines starting with '#' are
// ignored; addresses are lowercased and de-duplicated. A missing file yields no wallets.
func LoadWallets(path string) ([]string, []InvalidLine, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return []string{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open wallet file %s: %w", path, err)
	}
	defer file.Close()

	var (
		wallets []string
		invalid []InvalidLine
		seen    = make(map[string]struct{})
	)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "0x") || !common.IsHexAddress(line) {
			invalid = append(invalid, InvalidLine{Number: lineNum, Text: line})
			continue
		}
		address := strings.ToLower(line)
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		wallets = append(wallets, address)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error scanning wallet file %s: %w", path, err)
	}
	return wallets, invalid, nil
}
