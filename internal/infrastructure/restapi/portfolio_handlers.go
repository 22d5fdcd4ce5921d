package restapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
)

const maxTransactionLimit = 100

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	StatusMessage string `json:"status_message"`
}

// PortfolioHandler serves the wallet session endpoints.
type PortfolioHandler struct {
	portfolioService  port.PortfolioService
	stakingScanner    port.StakingScanner
	stakingCandidates []string
	txLimit           int
	logger            port.Logger
}

// NewPortfolioHandler creates a handler. stakingCandidates are scanned when a scan request
// names no addresses.
func NewPortfolioHandler(ps port.PortfolioService, scanner port.StakingScanner, stakingCandidates []string, txLimit int, logger port.Logger) *PortfolioHandler {
	if txLimit <= 0 {
		txLimit = 10
	}
	return &PortfolioHandler{
		portfolioService:  ps,
		stakingScanner:    scanner,
		stakingCandidates: stakingCandidates,
		txLimit:           txLimit,
		logger:            logger,
	}
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, APIResponse{Data: data, StatusMessage: message})
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidAddress):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrManagerClosed):
		status = http.StatusServiceUnavailable
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, APIResponse{Error: err.Error(), StatusMessage: http.StatusText(status)})
}

// StartSessionHandler opens or reuses the session of a wallet and returns its first snapshot.
func (h *PortfolioHandler) StartSessionHandler(c *gin.Context) {
	address := c.Param("address")
	if err := h.portfolioService.StartSession(c.Request.Context(), address); err != nil {
		respondError(c, err)
		return
	}
	portfolio, err := h.portfolioService.Portfolio(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, portfolio, "Session started.")
}

// StopSessionHandler stops the session of a wallet.
func (h *PortfolioHandler) StopSessionHandler(c *gin.Context) {
	h.portfolioService.StopSession(c.Param("address"))
	c.Status(http.StatusNoContent)
}

// GetPortfolioHandler returns the reconciled snapshot of a wallet.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	portfolio, err := h.portfolioService.Portfolio(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Portfolio retrieved successfully."
	if portfolio.UsingPlaceholderData() {
		message = "Portfolio retrieved. Some collections still show placeholder data."
	}
	respond(c, http.StatusOK, portfolio, message)
}

// GetTransactionsHandler returns the most recent transactions, ?limit= bounded to 100.
func (h *PortfolioHandler) GetTransactionsHandler(c *gin.Context) {
	limit := h.txLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, APIResponse{Error: "limit must be a positive integer", StatusMessage: http.StatusText(http.StatusBadRequest)})
			return
		}
		limit = min(n, maxTransactionLimit)
	}

	txs, err := h.portfolioService.Transactions(c.Param("address"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, txs, "Transactions retrieved successfully.")
}

// GetSeedHandler performs a one-shot RPC balance read.
func (h *PortfolioHandler) GetSeedHandler(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		respondError(c, entity.ErrInvalidAddress)
		return
	}
	balances := h.portfolioService.FetchSeed(c.Request.Context(), address)
	message := "Seed balances retrieved."
	if len(balances) == 0 {
		message = "No seed balance available."
	}
	respond(c, http.StatusOK, balances, message)
}

// GetPricesHandler returns the latest prices for ?tokens=a,b.
func (h *PortfolioHandler) GetPricesHandler(c *gin.Context) {
	tokens := splitList(c.Query("tokens"))
	if len(tokens) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, APIResponse{Error: "tokens query parameter is required", StatusMessage: http.StatusText(http.StatusBadRequest)})
		return
	}
	respond(c, http.StatusOK, h.portfolioService.Prices(tokens), "Prices retrieved successfully.")
}

// StakingScanHandler probes ?addresses=a,b (or the configured candidates) for staking contracts.
func (h *PortfolioHandler) StakingScanHandler(c *gin.Context) {
	if h.stakingScanner == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, APIResponse{Error: "staking scanner is not configured", StatusMessage: http.StatusText(http.StatusServiceUnavailable)})
		return
	}
	addresses := splitList(c.Query("addresses"))
	if len(addresses) == 0 {
		addresses = h.stakingCandidates
	}
	for _, addr := range addresses {
		if !common.IsHexAddress(addr) {
			respondError(c, entity.ErrInvalidAddress)
			return
		}
	}
	respond(c, http.StatusOK, h.stakingScanner.Scan(c.Request.Context(), addresses), "Scan completed.")
}

// StatusHandler reports the stream connection state of every live session.
func (h *PortfolioHandler) StatusHandler(c *gin.Context) {
	sessions := h.portfolioService.Connections()
	respond(c, http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)}, "OK")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
