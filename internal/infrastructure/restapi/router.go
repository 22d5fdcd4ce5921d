package restapi

import (
	"net/http/pprof"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stream_insight/internal/pkg/metrics"
)

// RouterOptions toggles the operational endpoints.
type RouterOptions struct {
	MetricsEnabled bool
	MetricsPath    string
	EnablePprof    bool
}

// SetupRouter builds the gin engine with every API route registered.
func SetupRouter(h *PortfolioHandler, zapLogger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		wallets := v1.Group("/wallets/:address")
		wallets.POST("/session", h.StartSessionHandler)
		wallets.DELETE("/session", h.StopSessionHandler)
		wallets.GET("/portfolio", h.GetPortfolioHandler)
		wallets.GET("/transactions", h.GetTransactionsHandler)
		wallets.GET("/seed", h.GetSeedHandler)
		wallets.GET("/events", h.EventsHandler)

		v1.GET("/prices", h.GetPricesHandler)
		v1.GET("/staking/scan", h.StakingScanHandler)
		v1.GET("/status", h.StatusHandler)
	}

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(metrics.Handler()))
	}

	if opts.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		}
	}

	return router
}
