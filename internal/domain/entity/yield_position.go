package entity

// YieldPosition is a staking or liquidity position held by a wallet.
type YieldPosition struct {
	Protocol        string `json:"protocol"`
	Token           string `json:"token"`
	Deposited       string `json:"deposited"`
	APY             string `json:"apy"`
	Earned          string `json:"earned"`
	DailyRewards    string `json:"dailyRewards"`
	ContractAddress string `json:"contractAddress"`
}

// Key returns the de-duplication key of the position.
func (p YieldPosition) Key() string {
	return p.ContractAddress + "|" + p.Protocol + "|" + p.Token
}
