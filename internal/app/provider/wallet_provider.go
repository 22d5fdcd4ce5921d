package provider

import (
	"stream_insight/internal/app/port"
	"stream_insight/internal/infrastructure/walletloader"
)

type walletProviderImpl struct {
	walletFilePath string
	logger         port.Logger
}

// NewWalletProvider creates a new WalletProvider.
func NewWalletProvider(filePath string, logger port.Logger) port.WalletProvider {
	return &walletProviderImpl{walletFilePath: filePath, logger: logger}
}

// GetWallets loads wallet addresses from the configured file. An empty path means no startup wallets.
func (p *walletProviderImpl) GetWallets() ([]string, error) {
	if p.walletFilePath == "" {
		return nil, nil
	}
	p.logger.Debug("Loading wallets from file", "path", p.walletFilePath)
	wallets, invalid, err := walletloader.LoadWallets(p.walletFilePath)
	if err != nil {
		p.logger.Error("Failed to load wallets", "path", p.walletFilePath, "error", err)
		return nil, err
	}
	for _, line := range invalid {
		p.logger.Warn("Invalid wallet address format, skipping", "path", p.walletFilePath, "line", line.Number, "text", line.Text)
	}
	p.logger.Info("Wallets loaded successfully", "count", len(wallets), "path", p.walletFilePath)
	return wallets, nil
}
