package entity

// StakingContractReport is the result of probing one contract address for staking functionality.
type StakingContractReport struct {
	Address   string   `json:"address"`
	Name      string   `json:"name,omitempty"`
	HasCode   bool     `json:"hasCode"`
	CodeSize  int      `json:"codeSize"`
	Selectors []string `json:"selectors,omitempty"`
	IsStaking bool     `json:"isStaking"`
	Error     string   `json:"error,omitempty"`
}
