package provider

import (
	"sync"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/tokenloader"
)

type tokenProviderImpl struct {
	tokenFile string
	chainID   uint64
	logger    port.Logger

	mu          sync.Mutex
	tokensCache []entity.TokenInfo
}

// NewTokenProvider creates a new TokenProvider backed by a JSON catalog file.
func NewTokenProvider(tokenFile string, chainID uint64, logger port.Logger) port.TokenProvider {
	return &tokenProviderImpl{
		tokenFile: tokenFile,
		chainID:   chainID,
		logger:    logger,
	}
}

// GetTrackedTokens loads the token catalog for the active chain.
// It caches the result after the first successful load.
func (p *tokenProviderImpl) GetTrackedTokens() ([]entity.TokenInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokensCache != nil {
		p.logger.Debug("Returning cached tracked tokens")
		return p.tokensCache, nil
	}

	p.logger.Debug("Loading tokens from disk", "path", p.tokenFile)
	tokens, skipped, err := tokenloader.LoadTokens(p.tokenFile, p.chainID)
	if err != nil {
		p.logger.Error("Failed to load tokens", "path", p.tokenFile, "error", err)
		return nil, err
	}
	for _, s := range skipped {
		p.logger.Warn("Skipping token", "path", p.tokenFile, "index", s.Index, "symbol", s.Token.Symbol, "address", s.Token.Address, "reason", s.Reason)
	}

	p.tokensCache = tokens
	p.logger.Info("Tokens loaded and cached successfully", "count", len(tokens), "chain_id", p.chainID)
	return tokens, nil
}
