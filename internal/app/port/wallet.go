package port

// WalletProvider lists wallets the service should track from startup.
type WalletProvider interface {
	GetWallets() ([]string, error)
}
