// Command stream_probe checks the push transport and staking contracts of the configured network.
//
//	stream_probe --watch 0xWallet --duration 60s
//	stream_probe --scan 0xContractA,0xContractB
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"stream_insight/internal/app/service"
	"stream_insight/internal/app/stream"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
	"stream_insight/internal/infrastructure/network/client"
	networkdefinition "stream_insight/internal/infrastructure/network/definition"
	"stream_insight/internal/infrastructure/network/streamclient"
	"stream_insight/internal/pkg/logger"
)

type probeLine struct {
	Time  string `json:"time"`
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// printer serializes output lines from concurrent subscription callbacks.
type printer struct {
	mu  sync.Mutex
	enc *jsoniter.Encoder
}

func newPrinter() *printer {
	return &printer{enc: jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)}
}

func (p *printer) print(topic string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(probeLine{Time: time.Now().UTC().Format(time.RFC3339), Topic: topic, Data: data})
}

func main() {
	configPath := flag.String("config", "config/config.yml", "Path to the configuration file")
	watch := flag.String("watch", "", "Wallet address to subscribe to")
	duration := flag.Duration("duration", 60*time.Second, "How long to watch before exiting")
	tokens := flag.String("tokens", "", "Comma-separated token addresses for the price topic")
	scan := flag.String("scan", "", "Comma-separated contract addresses to probe for staking selectors, or 'config'")
	flag.Parse()

	if *watch == "" && *scan == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}
	cfg, err := configloader.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	zapLogger, err := logger.Init(cfg.Logging.Level)
	if err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	netDef := networkdefinition.NewNetworkDefinitionProvider(logger.NewComponentLogger("network"), cfg.Network).Active()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := newPrinter()
	exitCode := 0
	if *scan != "" {
		if err := runScan(ctx, cfg, netDef, *scan, out); err != nil {
			logger.Error("Staking scan failed", "error", err)
			exitCode = 1
		}
	}
	if *watch != "" {
		if err := runWatch(ctx, cfg, netDef, *watch, splitAddresses(*tokens), *duration, out); err != nil {
			logger.Error("Watch failed", "wallet", *watch, "error", err)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		_ = zapLogger.Sync()
		os.Exit(exitCode)
	}
}

func runScan(ctx context.Context, cfg *configloader.Config, netDef entity.NetworkDefinition, list string, out *printer) error {
	timeout := time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second
	evmClient, err := client.NewEVMClient(netDef, timeout, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer evmClient.Close()

	names := make(map[string]string, len(cfg.Staking.Candidates))
	var addresses []string
	for _, c := range cfg.Staking.Candidates {
		names[strings.ToLower(c.Address)] = c.Name
		if list == "config" {
			addresses = append(addresses, c.Address)
		}
	}
	if list != "config" {
		addresses = splitAddresses(list)
	}
	if len(addresses) == 0 {
		return errors.New("no contract addresses to scan")
	}

	scanner := service.NewStakingScanner(evmClient, names, logger.NewComponentLogger("staking"))
	for _, report := range scanner.Scan(ctx, addresses) {
		out.print("staking_scan", report)
	}
	return nil
}

func runWatch(
	ctx context.Context,
	cfg *configloader.Config,
	netDef entity.NetworkDefinition,
	wallet string,
	tokens []string,
	duration time.Duration,
	out *printer,
) error {
	if !common.IsHexAddress(wallet) {
		return entity.ErrInvalidAddress
	}
	wallet = strings.ToLower(wallet)

	dialer := streamclient.NewDialer(netDef, cfg.Stream, logger.NewComponentLogger("stream"))
	manager := stream.NewManager(dialer, logger.NewComponentLogger("manager"))
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Warn("Stream manager closed with errors", "error", err)
		}
	}()

	unobserve := manager.OnStateChange(func(state entity.ConnectionState) {
		out.print("connection", state)
	})
	defer unobserve()

	if err := manager.Initialize(ctx); err != nil {
		return err
	}
	logger.Info("Stream connected", "endpoint", dialer.Endpoint(), "wallet", wallet, "duration", duration.String())

	cancels := []stream.CancelFunc{
		manager.SubscribeToWalletBalances(wallet, func(b []entity.TokenBalance) { out.print(string(entity.TopicBalances), b) }),
		manager.SubscribeToTransactions(wallet, func(tx entity.Transaction) { out.print(string(entity.TopicTransactions), tx) }),
		manager.SubscribeToYieldPositions(wallet, func(p []entity.YieldPosition) { out.print(string(entity.TopicYield), p) }),
	}
	if len(tokens) > 0 {
		cancels = append(cancels, manager.SubscribeToTokenPrices(tokens, func(p entity.PriceUpdate) { out.print(string(entity.TopicPrices), p) }))
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	logger.Info("Watch finished", "wallet", wallet, "subscriptions", manager.ActiveSubscriptions())
	return nil
}

func splitAddresses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
