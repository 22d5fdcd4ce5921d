package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte(`# demo wallets
0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD

0xabcdefabcdefabcdefabcdefabcdefabcdefabcd
abcdefabcdefabcdefabcdefabcdefabcdefabcd
0x1234
`), 0o600))

	wallets, invalid, err := LoadWallets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"}, wallets)
	require.Len(t, invalid, 2)
	assert.Equal(t, 5, invalid[0].Number)
	assert.Equal(t, "0x1234", invalid[1].Text)
}

func TestLoadWallets_MissingFile(t *testing.T) {
	wallets, invalid, err := LoadWallets(filepath.Join(t.TempDir(), "none.txt"))
	require.NoError(t, err)
	assert.Empty(t, wallets)
	assert.Empty(t, invalid)
}
