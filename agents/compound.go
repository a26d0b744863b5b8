package agents

import (
	"math"
	"math/big"
)

// USDValue prices a token amount.
func USDValue(amount, price float64) float64 {
	return amount * price
}

// FaucetBatch is how many compounding thresholds the available USD covers,
// rounded half to even.
func FaucetBatch(availableUSD, usdToCompound float64) uint64 {
	if usdToCompound <= 0 || availableUSD <= 0 {
		return 0
	}
	return uint64(math.RoundToEven(availableUSD / usdToCompound))
}

// ReadyPlants is the number of whole plants the seeds can grow.
func ReadyPlants(seeds, seedsPerPlant uint64) uint64 {
	if seedsPerPlant == 0 || seeds < seedsPerPlant {
		return 0
	}
	return seeds / seedsPerPlant
}

func SeedRemainder(seeds, seedsPerPlant uint64) uint64 {
	if seedsPerPlant == 0 {
		return 0
	}
	return seeds % seedsPerPlant
}

// SeedRatio is the share of a plant's seed cost not left over as remainder.
func SeedRatio(remainder, seedsPerPlant uint64) float64 {
	if seedsPerPlant == 0 {
		return 0
	}
	return 1 - float64(remainder)/float64(seedsPerPlant)
}

// PlantsGrownInDay is how many plants the current plants produce in a day.
func PlantsGrownInDay(plants, seedsPerPlant uint64) uint64 {
	if seedsPerPlant == 0 {
		return 0
	}
	n := new(big.Int).Mul(new(big.Int).SetUint64(plants), big.NewInt(SecondsPerDay))
	n.Quo(n, new(big.Int).SetUint64(seedsPerPlant))
	if !n.IsUint64() {
		return math.MaxUint64
	}
	return n.Uint64()
}

// IsNewQuantity gates compounding on the ready quantity having grown past
// the last recorded pending quantity.
func IsNewQuantity(ready, pending uint64) bool {
	return ready > pending
}

func SeedRatioPassed(ratio, allowed float64, ignore bool) bool {
	return ignore || ratio > allowed
}

// FromBaseUnits scales an on-chain integer amount down by decimals.
func FromBaseUnits(v *big.Int, decimals int) float64 {
	if v == nil {
		return 0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), scale).Float64()
	return f
}
