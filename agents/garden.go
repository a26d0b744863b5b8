package agents

import (
	"context"

	"dripcompounder/abis"
	"dripcompounder/config"
	"dripcompounder/entities"
	"dripcompounder/metrics"
	"dripcompounder/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GardenCompounder plants ready seeds.
type GardenCompounder struct {
	AgentAbs
	pendingPlants uint64
}

func NewGardenCompounder(cfg *config.Config, backend utils.ChainBackend, logger *logrus.Logger, m *metrics.Metrics) (*GardenCompounder, error) {
	parsed, err := abis.Load(cfg.Garden.ABIFile, abis.Garden)
	if err != nil {
		return nil, errors.Wrap(err, "garden abi")
	}
	contract := utils.NewContract(cfg.Garden.ContractAddress, parsed, backend)
	return &GardenCompounder{
		AgentAbs: newAgentAbs(GardenAgentID, GardenAgentName, cfg, contract, logger, m),
	}, nil
}

// PendingPlants is the last recorded plant count still waiting to be planted.
func (g *GardenCompounder) PendingPlants() uint64 {
	return g.pendingPlants
}

func (g *GardenCompounder) readCount(ctx context.Context, method string, args ...interface{}) (uint64, error) {
	v, err := g.readUint(ctx, 0, method, args...)
	if err != nil {
		return 0, err
	}
	return toUint64(method, v)
}

func (g *GardenCompounder) getPlantsToCompound(plants, seedsPerPlant uint64) uint64 {
	if g.Config.Garden.CompoundPlantsGrownInDay {
		return PlantsGrownInDay(plants, seedsPerPlant)
	}
	return g.Config.Garden.PlantsToCompound
}

// Poll reads the garden state and derives the plant counts and seed ratio.
func (g *GardenCompounder) Poll(ctx context.Context) (*entities.GardenData, error) {
	seeds, err := g.readCount(ctx, MethodGetUserSeeds, g.Config.WalletAddress)
	if err != nil {
		return nil, err
	}
	plants, err := g.readCount(ctx, MethodHatcheryPlants, g.Config.WalletAddress)
	if err != nil {
		return nil, err
	}
	seedsPerPlant, err := g.readCount(ctx, MethodSeedsToGrowPlant)
	if err != nil {
		return nil, err
	}
	if seedsPerPlant == 0 {
		return nil, errors.Errorf("%s returned 0", MethodSeedsToGrowPlant)
	}

	remainder := SeedRemainder(seeds, seedsPerPlant)
	return &entities.GardenData{
		Seeds:            seeds,
		Plants:           plants,
		ReadyPlants:      ReadyPlants(seeds, seedsPerPlant),
		PlantsToCompound: g.getPlantsToCompound(plants, seedsPerPlant),
		SeedsPerPlant:    seedsPerPlant,
		SeedRemainder:    remainder,
		SeedRatio:        SeedRatio(remainder, seedsPerPlant),
	}, nil
}

func (g *GardenCompounder) checkNewPlants(ready uint64) bool {
	if IsNewQuantity(ready, g.pendingPlants) {
		g.Logger.Debugf("Ready plants: %d which is greater than %d", ready, g.pendingPlants)
		return true
	}
	g.Logger.Debugf("Ready plants: %d should be greater than %d", ready, g.pendingPlants)
	return false
}

func (g *GardenCompounder) checkSeedRatio(ratio float64) bool {
	if SeedRatioPassed(ratio, g.Config.Garden.SeedRatioAllowed, g.Config.Garden.IgnoreSeedRatio) {
		g.Logger.Info("Current seeds above ratio or ratio ignored")
		return true
	}
	g.Logger.Debugf("Seed ratio is %v. should be above %v", ratio, g.Config.Garden.SeedRatioAllowed)
	return false
}

func (g *GardenCompounder) plantSeeds(ctx context.Context, ready uint64) uint64 {
	return g.submitWithRetry(ctx, "plant seeds", ready, MethodPlantSeeds, g.Config.WalletAddress)
}

func (g *GardenCompounder) Execute(ctx context.Context) {
	g.Logger.Info("Garden agent is executing...")
	g.countExecution()

	data, err := g.Poll(ctx)
	if err != nil {
		g.Logger.Warnf("Could not poll garden: %v", err)
		g.countPollError()
		return
	}
	g.Logger.WithFields(data.Fields()).Info("Garden polled")
	g.observe("ready_plants", float64(data.ReadyPlants))
	g.observe("seed_ratio", data.SeedRatio)

	if data.ReadyPlants < data.PlantsToCompound {
		return
	}
	if !g.checkNewPlants(data.ReadyPlants) || !g.checkSeedRatio(data.SeedRatio) {
		return
	}
	g.pendingPlants = g.plantSeeds(ctx, data.ReadyPlants)
	g.setPending(g.pendingPlants)
}
