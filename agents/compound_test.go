package agents

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUSDValue(t *testing.T) {
	for _, c := range []struct{ amount, price float64 }{
		{0, 3}, {1.5, 2}, {100, 0.37}, {12.25, 8},
	} {
		require.Equal(t, c.amount*c.price, USDValue(c.amount, c.price))
		require.Equal(t, USDValue(c.amount, c.price), USDValue(c.price, c.amount))
	}
}

func TestFaucetBatch(t *testing.T) {
	require.Equal(t, uint64(3), FaucetBatch(100, 37))
	require.Equal(t, uint64(1), FaucetBatch(10, 10))
	// half rounds to even
	require.Equal(t, uint64(2), FaucetBatch(25, 10))
	require.Equal(t, uint64(4), FaucetBatch(35, 10))
	require.Equal(t, uint64(0), FaucetBatch(100, 0))
	require.Equal(t, uint64(0), FaucetBatch(0, 10))
}

func TestReadyPlants(t *testing.T) {
	require.Equal(t, uint64(2), ReadyPlants(250, 100))
	require.Equal(t, uint64(0), ReadyPlants(50, 100))
	require.Equal(t, uint64(1), ReadyPlants(100, 100))
	require.Equal(t, uint64(0), ReadyPlants(100, 0))
}

func TestSeedRatio(t *testing.T) {
	remainder := SeedRemainder(150, 100)
	require.Equal(t, uint64(50), remainder)
	require.Equal(t, 0.5, SeedRatio(remainder, 100))
	require.Equal(t, 1.0, SeedRatio(SeedRemainder(200, 100), 100))
	require.Equal(t, 0.0, SeedRatio(0, 0))
}

func TestPlantsGrownInDay(t *testing.T) {
	require.Equal(t, uint64(2), PlantsGrownInDay(60, 2592000))
	require.Equal(t, uint64(0), PlantsGrownInDay(10, 2592000))
	require.Equal(t, uint64(0), PlantsGrownInDay(10, 0))
}

func TestIsNewQuantity(t *testing.T) {
	require.False(t, IsNewQuantity(5, 5))
	require.False(t, IsNewQuantity(4, 5))
	require.True(t, IsNewQuantity(6, 5))
	require.True(t, IsNewQuantity(1, 0))
}

func TestSeedRatioPassed(t *testing.T) {
	require.True(t, SeedRatioPassed(0.6, 0.5, false))
	require.False(t, SeedRatioPassed(0.5, 0.5, false))
	require.True(t, SeedRatioPassed(0.1, 0.5, true))
}

func TestFromBaseUnits(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	require.Equal(t, 1.5, FromBaseUnits(wei, 18))
	require.Equal(t, 0.0, FromBaseUnits(nil, 18))
	require.Equal(t, 42.0, FromBaseUnits(big.NewInt(42), 0))
}
