package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
	EnablePprof         bool   `yaml:"enablePprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// NetworkConfig describes the chain the service tracks.
type NetworkConfig struct {
	Name               string   `yaml:"name"`
	Identifier         string   `yaml:"identifier"`
	ChainID            uint64   `yaml:"chainID"`
	RPCURL             string   `yaml:"rpcURL"`
	FallbackRPCURLs    []string `yaml:"fallbackRPCURLs"`
	WSURL              string   `yaml:"wsURL"`
	ExplorerURL        string   `yaml:"explorerURL"`
	DEXScreenerChainID string   `yaml:"dexScreenerChainId"`
	NativeSymbol       string   `yaml:"nativeSymbol"`
	NativeName         string   `yaml:"nativeName"`
}

// StreamConfig holds configuration for the push-subscription transport.
type StreamConfig struct {
	DialTimeoutSeconds int  `yaml:"dialTimeoutSeconds"`
	HTTPFallback       bool `yaml:"httpFallback"`
	BufferSize         int  `yaml:"bufferSize"`
	// PollIntervalMillis paces eth_getFilterChanges when the HTTP fallback is in use.
	PollIntervalMillis int `yaml:"pollIntervalMillis"`
}

// SessionConfig holds configuration for per-wallet sessions.
type SessionConfig struct {
	LoadingTimeoutSeconds int `yaml:"loadingTimeoutSeconds"`
	// RefreshIntervalSeconds of 0 disables the periodic RPC refresh.
	RefreshIntervalSeconds *int  `yaml:"refreshIntervalSeconds"`
	SeedTimeoutSeconds     int   `yaml:"seedTimeoutSeconds"`
	TransactionLimit       int   `yaml:"transactionLimit"`
	UsePlaceholderData     *bool `yaml:"usePlaceholderData"`
	EventBufferSize        int   `yaml:"eventBufferSize"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines    int     `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds    int     `yaml:"rpc_call_timeout_seconds"`
	RPCRateLimit             float64 `yaml:"rpc_rate_limit"`
	RPCBurst                 int     `yaml:"rpc_burst"`
	MaxAddressesPerBatchCall int     `yaml:"max_addresses_per_batch_call"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
type TokenPriceServiceConfig struct {
	MaxTokensPerBatchRequest int   `yaml:"maxTokensPerBatchRequest"`
	CacheTTLMinutes          int   `yaml:"cacheTTLMinutes"`
	RequestTimeoutMillis     int64 `yaml:"requestTimeoutMillis"`
}

// NATSConfig configures the change-event publisher. An empty URL disables it.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subjectPrefix"`
	ClientName    string `yaml:"clientName"`
}

// RedisConfig configures the snapshot store. An empty Addr disables it.
type RedisConfig struct {
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	KeyPrefix          string `yaml:"keyPrefix"`
	SnapshotTTLMinutes int    `yaml:"snapshotTTLMinutes"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FilesConfig points at the token catalog and the startup wallet list.
type FilesConfig struct {
	Tokens  string `yaml:"tokens"`
	Wallets string `yaml:"wallets"`
}

// StakingConfig lists candidate contracts for the staking scanner.
type StakingConfig struct {
	Candidates []StakingCandidate `yaml:"candidates"`
}

type StakingCandidate struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig            `yaml:"server"`
	Logging       LoggingConfig           `yaml:"logging"`
	Network       NetworkConfig           `yaml:"network"`
	Stream        StreamConfig            `yaml:"stream"`
	Session       SessionConfig           `yaml:"session"`
	Performance   PerformanceConfig       `yaml:"performance"`
	DEXScreener   DEXScreenerConfig       `yaml:"dexScreener"`
	TokenPriceSvc TokenPriceServiceConfig `yaml:"tokenPriceService"`
	NATS          NATSConfig              `yaml:"nats"`
	Redis         RedisConfig             `yaml:"redis"`
	Metrics       MetricsConfig           `yaml:"metrics"`
	Files         FilesConfig             `yaml:"files"`
	Staking       StakingConfig           `yaml:"staking"`
}

// RefreshInterval returns the periodic refresh interval in seconds, 0 when disabled.
func (s SessionConfig) RefreshInterval() int {
	if s.RefreshIntervalSeconds == nil {
		return 0
	}
	return *s.RefreshIntervalSeconds
}

// PlaceholdersEnabled reports whether sessions start with placeholder data.
func (s SessionConfig) PlaceholdersEnabled() bool {
	return s.UsePlaceholderData == nil || *s.UsePlaceholderData
}

// Load reads the YAML configuration file from the given path, applies environment overrides
// and fills in defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes YAML config bytes, applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SOMNIA_RPC_URL"); v != "" {
		cfg.Network.RPCURL = v
	}
	if v := os.Getenv("SOMNIA_WS_URL"); v != "" {
		cfg.Network.WSURL = v
	}
	if v := os.Getenv("SOMNIA_EXPLORER_URL"); v != "" {
		cfg.Network.ExplorerURL = v
	}
	if v := os.Getenv("SOMNIA_CHAIN_ID"); v != "" {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse SOMNIA_CHAIN_ID %q: %w", v, err)
		}
		cfg.Network.ChainID = id
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 10
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// Somnia testnet
	if cfg.Network.Name == "" {
		cfg.Network.Name = "Somnia Testnet"
	}
	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = "somnia-testnet"
	}
	if cfg.Network.ChainID == 0 {
		cfg.Network.ChainID = 50312
		logrus.Infof("Network.ChainID not set, defaulting to %d", cfg.Network.ChainID)
	}
	if cfg.Network.RPCURL == "" {
		cfg.Network.RPCURL = "https://dream-rpc.somnia.network"
		logrus.Infof("Network.RPCURL not set, defaulting to %s", cfg.Network.RPCURL)
	}
	if cfg.Network.ExplorerURL == "" {
		cfg.Network.ExplorerURL = "https://shannon-explorer.somnia.network"
	}
	if cfg.Network.NativeSymbol == "" {
		cfg.Network.NativeSymbol = "STT"
	}
	if cfg.Network.NativeName == "" {
		cfg.Network.NativeName = "Somnia Test Token"
	}
	if cfg.Network.DEXScreenerChainID == "" {
		cfg.Network.DEXScreenerChainID = "somnia"
		logrus.Warnf("Network '%s' is missing dexScreenerChainId, defaulting to '%s'. Price fetching via DEXScreener might fail.", cfg.Network.Name, cfg.Network.DEXScreenerChainID)
	}

	if cfg.Stream.DialTimeoutSeconds <= 0 {
		cfg.Stream.DialTimeoutSeconds = 10
	}
	if cfg.Stream.PollIntervalMillis <= 0 {
		cfg.Stream.PollIntervalMillis = 2000
	}
	if cfg.Stream.BufferSize <= 0 {
		cfg.Stream.BufferSize = 128
	}

	if cfg.Session.LoadingTimeoutSeconds <= 0 {
		cfg.Session.LoadingTimeoutSeconds = 10
	}
	if cfg.Session.RefreshIntervalSeconds == nil {
		refresh := 30
		cfg.Session.RefreshIntervalSeconds = &refresh
		logrus.Infof("Session.RefreshIntervalSeconds not set, defaulting to %d", refresh)
	}
	if cfg.Session.SeedTimeoutSeconds <= 0 {
		cfg.Session.SeedTimeoutSeconds = 10
	}
	if cfg.Session.TransactionLimit <= 0 {
		cfg.Session.TransactionLimit = 10
	}
	if cfg.Session.EventBufferSize <= 0 {
		cfg.Session.EventBufferSize = 64
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.RPCRateLimit <= 0 {
		cfg.Performance.RPCRateLimit = 20
	}
	if cfg.Performance.RPCBurst <= 0 {
		cfg.Performance.RPCBurst = 5
	}
	if cfg.Performance.MaxAddressesPerBatchCall <= 0 {
		cfg.Performance.MaxAddressesPerBatchCall = 100
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis == 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	if cfg.TokenPriceSvc.MaxTokensPerBatchRequest == 0 {
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest = 30 // DEXScreener limit
		logrus.Infof("MaxTokensPerBatchRequest for TokenPriceSvc not set, defaulting to %d", cfg.TokenPriceSvc.MaxTokensPerBatchRequest)
	}
	if cfg.TokenPriceSvc.CacheTTLMinutes == 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 60
		logrus.Infof("CacheTTLMinutes for TokenPriceSvc not set, defaulting to %d minutes", cfg.TokenPriceSvc.CacheTTLMinutes)
	}
	if cfg.TokenPriceSvc.RequestTimeoutMillis == 0 {
		cfg.TokenPriceSvc.RequestTimeoutMillis = cfg.DEXScreener.RequestTimeoutMillis
		logrus.Infof("TokenPriceSvc.RequestTimeoutMillis not set, defaulting to DEXScreener.RequestTimeoutMillis: %d ms", cfg.TokenPriceSvc.RequestTimeoutMillis)
	}

	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "stream_insight"
	}
	if cfg.NATS.ClientName == "" {
		cfg.NATS.ClientName = "stream_insight"
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "stream_insight"
	}
	if cfg.Redis.SnapshotTTLMinutes <= 0 {
		cfg.Redis.SnapshotTTLMinutes = 60
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Files.Tokens == "" {
		cfg.Files.Tokens = "data/tokens/somnia.json"
	}
}
