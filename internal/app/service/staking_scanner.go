package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
)

// ExampleStakingContract is the known staking deployment on the Somnia testnet.
const ExampleStakingContract = "0x575109e921C6d6a1Cb7cA60Be0191B10950AfA6C"

type stakingSelector struct {
	id        []byte
	signature string
	entry     bool // stake or deposit entry point
}

func mustSelector(hex, signature string, entry bool) stakingSelector {
	return stakingSelector{id: hexutil.MustDecode(hex), signature: signature, entry: entry}
}

var stakingSelectors = []stakingSelector{
	mustSelector("0x6945b123", "stake(uint256)", true),
	mustSelector("0xa694fc3a", "stake()", true),
	mustSelector("0xd0e30db0", "deposit()", true),
	mustSelector("0x47e7ef24", "deposit(uint256)", true),
	mustSelector("0x379607f5", "claim()", false),
	mustSelector("0x4e71d92d", "claimRewards()", false),
	mustSelector("0x3d18b912", "withdrawRewards()", false),
}

// StakingScanner checks contract bytecode for known staking function selectors.
type StakingScanner struct {
	client port.BlockchainClient
	names  map[string]string
	logger port.Logger
}

// NewStakingScanner creates a scanner. names maps lowercase addresses to display names.
func NewStakingScanner(client port.BlockchainClient, names map[string]string, logger port.Logger) *StakingScanner {
	known := map[string]string{strings.ToLower(ExampleStakingContract): "Example Staking Contract"}
	for addr, name := range names {
		known[strings.ToLower(addr)] = name
	}
	return &StakingScanner{client: client, names: known, logger: logger}
}

// Scan probes every address in order. Failures are reported per contract.
func (s *StakingScanner) Scan(ctx context.Context, addresses []string) []entity.StakingContractReport {
	reports := make([]entity.StakingContractReport, 0, len(addresses))
	for _, addr := range addresses {
		reports = append(reports, s.scanOne(ctx, strings.TrimSpace(addr)))
	}
	return reports
}

func (s *StakingScanner) scanOne(ctx context.Context, address string) entity.StakingContractReport {
	report := entity.StakingContractReport{
		Address: address,
		Name:    s.names[strings.ToLower(address)],
	}
	if !common.IsHexAddress(address) {
		report.Error = entity.ErrInvalidAddress.Error()
		return report
	}

	code, err := s.client.GetCode(ctx, address)
	if err != nil {
		s.logger.Warn("Failed to read contract code", "address", address, "error", err)
		report.Error = err.Error()
		return report
	}
	report.CodeSize = len(code)
	report.HasCode = len(code) > 0
	if !report.HasCode {
		return report
	}

	for _, sel := range stakingSelectors {
		if bytes.Contains(code, sel.id) {
			report.Selectors = append(report.Selectors, sel.signature)
			if sel.entry {
				report.IsStaking = true
			}
		}
	}
	s.logger.Debug("Contract scanned", "address", address, "codeSize", report.CodeSize, "selectors", len(report.Selectors))
	return report
}
