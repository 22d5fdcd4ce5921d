package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
)

const wallet = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

func setupStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *SnapshotStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "test", ttl)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	mr, store := setupStore(t, time.Hour)
	ctx := context.Background()

	in := entity.WalletPortfolio{
		WalletAddress: wallet,
		Balances: []entity.TokenBalance{{
			OwnerAddress: wallet, ContractAddress: entity.ZeroAddress, Symbol: "STT",
			Balance: "2.5", Value: "$2.50", Price: "$1.00", Decimals: 18,
		}},
		Transactions:   []entity.Transaction{},
		YieldPositions: []entity.YieldPosition{},
		Prices:         map[string]entity.PriceUpdate{},
		TotalValueUSD:  decimal.RequireFromString("2.5"),
		Status:         entity.CollectionStatus{Balances: entity.DataLoaded, Transactions: entity.DataEmpty},
		Sources:        entity.CollectionSources{Balances: entity.TierSeed},
		Connection:     entity.StateReady,
		UpdatedAt:      1700000000,
	}
	require.NoError(t, store.Save(ctx, in))
	assert.True(t, mr.Exists("test:snapshot:"+wallet))
	assert.Equal(t, time.Hour, mr.TTL("test:snapshot:"+wallet))

	out, err := store.Load(ctx, "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.Balances, out.Balances)
	assert.True(t, in.TotalValueUSD.Equal(out.TotalValueUSD))
	assert.Equal(t, entity.TierSeed, out.Sources.Balances)
	assert.Equal(t, entity.DataEmpty, out.Status.Transactions)
	assert.Equal(t, entity.StateReady, out.Connection)
}

func TestSnapshotStore_MissingAndExpired(t *testing.T) {
	mr, store := setupStore(t, time.Minute)
	ctx := context.Background()

	out, err := store.Load(ctx, wallet)
	require.NoError(t, err)
	assert.Nil(t, out)

	require.NoError(t, store.Save(ctx, entity.WalletPortfolio{WalletAddress: wallet}))
	mr.FastForward(2 * time.Minute)
	out, err = store.Load(ctx, wallet)
	require.NoError(t, err)
	assert.Nil(t, out)

	assert.ErrorIs(t, store.Save(ctx, entity.WalletPortfolio{}), entity.ErrInvalidAddress)
}

func TestSnapshotStore_CorruptValue(t *testing.T) {
	mr, store := setupStore(t, 0)
	require.NoError(t, mr.Set("test:snapshot:"+wallet, "{not json"))

	_, err := store.Load(context.Background(), wallet)
	assert.ErrorContains(t, err, "failed to decode snapshot")
}

func TestNew_PingFailure(t *testing.T) {
	_, err := New(context.Background(), configloader.RedisConfig{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "failed to connect to redis")
}
