package agents

const (
	GardenAgentID = 1
	FaucetAgentID = 2

	GardenAgentName = "garden"
	FaucetAgentName = "faucet"

	// token amounts on chain carry 18 decimals
	TokenDecimals = 18

	SecondsPerDay = 86400
)

const (
	MethodUserInfoTotals   = "userInfoTotals"
	MethodClaimsAvailable  = "claimsAvailable"
	MethodRoll             = "roll"
	MethodGetUserSeeds     = "getUserSeeds"
	MethodHatcheryPlants   = "hatcheryPlants"
	MethodSeedsToGrowPlant = "SEEDS_TO_GROW_1PLANT"
	MethodPlantSeeds       = "plantSeeds"

	// index of total_deposits in the userInfoTotals outputs
	userInfoTotalsDeposits = 1
)
