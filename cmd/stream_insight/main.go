package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stream_insight/internal/app/port"
	"stream_insight/internal/app/provider"
	"stream_insight/internal/app/service"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
	"stream_insight/internal/infrastructure/httpclient"
	"stream_insight/internal/infrastructure/network/client"
	networkdefinition "stream_insight/internal/infrastructure/network/definition"
	"stream_insight/internal/infrastructure/network/streamclient"
	natspub "stream_insight/internal/infrastructure/pubsub/nats"
	"stream_insight/internal/infrastructure/restapi"
	redisstore "stream_insight/internal/infrastructure/storage/redis"
	"stream_insight/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "Path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		*configPath = p
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
	appLogger := logger.NewSlogAdapter()
	appLogger.Info("Configuration loaded", "path", *configPath, "log_level", cfg.Logging.Level)

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(logger.NewComponentLogger("network"), cfg.Network)
	netDef := networkProvider.Active()

	rpcTimeout := time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second
	evmClient, err := client.NewEVMClient(netDef, rpcTimeout, rpcTimeout)
	if err != nil {
		logger.Fatal("Failed to connect to RPC", "network", netDef.Identifier, "error", err)
	}
	defer evmClient.Close()

	tokenProvider := provider.NewTokenProvider(cfg.Files.Tokens, netDef.ChainID, logger.NewComponentLogger("tokens"))
	trackedTokens, err := tokenProvider.GetTrackedTokens()
	if err != nil {
		logger.Fatal("Failed to load token catalog", "path", cfg.Files.Tokens, "error", err)
	}

	dexScreenerClient := httpclient.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
	)
	priceService := service.NewTokenPriceService(tokenProvider, netDef, dexScreenerClient, logger.NewComponentLogger("prices"), cfg)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ctx, cancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer cancel()
		if err := priceService.LoadAndCacheTokenPrices(ctx); err != nil {
			appLogger.Error("Failed to perform initial load and cache of token prices", "error", err)
			return
		}
		appLogger.Info("Initial token price loading and caching completed")
	}()

	limiter := rate.NewLimiter(rate.Limit(cfg.Performance.RPCRateLimit), cfg.Performance.RPCBurst)
	fetcher := service.NewBalanceFetcher(
		evmClient,
		priceService,
		limiter,
		rpcTimeout,
		cfg.Performance.MaxAddressesPerBatchCall,
		logger.NewComponentLogger("fetcher"),
	)

	dialer := streamclient.NewDialer(netDef, cfg.Stream, logger.NewComponentLogger("stream"))

	opts := []service.TrackerOption{service.WithPriceService(priceService)}
	if cfg.NATS.URL != "" {
		publisher, err := natspub.New(logger.NewComponentLogger("nats"), &cfg.NATS)
		if err != nil {
			appLogger.Warn("NATS publisher disabled", "url", cfg.NATS.URL, "error", err)
		} else {
			defer publisher.Close()
			opts = append(opts, service.WithPublisher(publisher))
		}
	}
	if cfg.Redis.Addr != "" {
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		store, err := redisstore.New(pingCtx, cfg.Redis)
		cancel()
		if err != nil {
			appLogger.Warn("Redis snapshot store disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer store.Close()
			opts = append(opts, service.WithSnapshotStore(store))
		}
	}

	tracker := service.NewTracker(dialer, fetcher, sessionConfig(cfg, trackedTokens), logger.NewComponentLogger("tracker"), opts...)
	defer tracker.Close()

	startWallets(rootCtx, tracker, provider.NewWalletProvider(cfg.Files.Wallets, logger.NewComponentLogger("wallets")), appLogger)

	candidates, names := stakingCandidates(cfg.Staking)
	scanner := service.NewStakingScanner(evmClient, names, logger.NewComponentLogger("staking"))

	handler := restapi.NewPortfolioHandler(tracker, scanner, candidates, cfg.Session.TransactionLimit, logger.NewComponentLogger("api"))
	router := restapi.SetupRouter(handler, zapLogger, restapi.RouterOptions{
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		EnablePprof:    cfg.Server.EnablePprof,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr), zap.String("network", netDef.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

func sessionConfig(cfg *configloader.Config, tokens []entity.TokenInfo) service.SessionConfig {
	return service.SessionConfig{
		LoadingTimeout:  time.Duration(cfg.Session.LoadingTimeoutSeconds) * time.Second,
		RefreshInterval: time.Duration(cfg.Session.RefreshInterval()) * time.Second,
		SeedTimeout:     time.Duration(cfg.Session.SeedTimeoutSeconds) * time.Second,
		TxLimit:         cfg.Session.TransactionLimit,
		UsePlaceholders: cfg.Session.PlaceholdersEnabled(),
		EventBuffer:     cfg.Session.EventBufferSize,
		TrackedTokens:   tokens,
	}
}

func startWallets(ctx context.Context, tracker port.PortfolioService, wallets port.WalletProvider, log port.Logger) {
	addresses, err := wallets.GetWallets()
	if err != nil {
		log.Warn("Startup wallets not loaded", "error", err)
		return
	}
	for _, address := range addresses {
		if err := tracker.StartSession(ctx, address); err != nil {
			log.Warn("Failed to start wallet session", "wallet", address, "error", err)
		}
	}
}

func stakingCandidates(cfg configloader.StakingConfig) ([]string, map[string]string) {
	addresses := make([]string, 0, len(cfg.Candidates))
	names := make(map[string]string, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		addresses = append(addresses, c.Address)
		if c.Name != "" {
			names[strings.ToLower(c.Address)] = c.Name
		}
	}
	return addresses, names
}
