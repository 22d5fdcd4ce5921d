package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/logger"
)

func TestStakingScanner(t *testing.T) {
	stakingCode := hexutil.MustDecode("0x6080604052348015600f57600080fd5b50636945b123146100345780633d18b91214610040575b")
	plainCode := hexutil.MustDecode("0x6080604052")
	eoa := "0x3333333333333333333333333333333333333333"
	plain := "0x4444444444444444444444444444444444444444"
	broken := "0x5555555555555555555555555555555555555555"

	client := new(mockBlockchainClient)
	client.On("GetCode", mock.Anything, ExampleStakingContract).Return(stakingCode, nil)
	client.On("GetCode", mock.Anything, eoa).Return([]byte{}, nil)
	client.On("GetCode", mock.Anything, plain).Return(plainCode, nil)
	client.On("GetCode", mock.Anything, broken).Return(nil, errors.New("timeout"))

	scanner := NewStakingScanner(client, map[string]string{plain: "Plain Contract"}, logger.NewNopLogger())
	reports := scanner.Scan(context.Background(), []string{ExampleStakingContract, eoa, plain, broken, "not-an-address"})

	require.Len(t, reports, 5)

	assert.Equal(t, "Example Staking Contract", reports[0].Name)
	assert.True(t, reports[0].HasCode)
	assert.True(t, reports[0].IsStaking)
	assert.Equal(t, []string{"stake(uint256)", "withdrawRewards()"}, reports[0].Selectors)

	assert.False(t, reports[1].HasCode)
	assert.False(t, reports[1].IsStaking)

	assert.Equal(t, "Plain Contract", reports[2].Name)
	assert.True(t, reports[2].HasCode)
	assert.Equal(t, 5, reports[2].CodeSize)
	assert.False(t, reports[2].IsStaking)

	assert.Equal(t, "timeout", reports[3].Error)
	assert.Equal(t, entity.ErrInvalidAddress.Error(), reports[4].Error)
	client.AssertNumberOfCalls(t, "GetCode", 4)
}
