package main

import (
	"context"
	"math/big"
	"testing"
	"time"

	"dripcompounder/abis"
	"dripcompounder/agents"
	"dripcompounder/config"
	"dripcompounder/metrics"
	"dripcompounder/utils/chaintest"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingAgent struct {
	agents.AgentAbs
	log    *[]string
	cancel context.CancelFunc
	stopAt int
}

func (r *recordingAgent) Execute(ctx context.Context) {
	*r.log = append(*r.log, r.Name)
	if r.cancel != nil && len(*r.log) >= r.stopAt {
		r.cancel()
	}
}

func TestExecuteAgentsOrderPerCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log []string
	garden := &recordingAgent{AgentAbs: agents.AgentAbs{Name: "garden"}, log: &log}
	faucet := &recordingAgent{AgentAbs: agents.AgentAbs{Name: "faucet"}, log: &log, cancel: cancel, stopAt: 6}

	done := make(chan struct{})
	go func() {
		executeAgents(ctx, []agents.Agent{garden, faucet}, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	require.Equal(t, []string{"garden", "faucet", "garden", "faucet", "garden", "faucet"}, log)
}

func TestExecuteAgentsCancelledMidCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log []string
	garden := &recordingAgent{AgentAbs: agents.AgentAbs{Name: "garden"}, log: &log, cancel: cancel, stopAt: 1}
	faucet := &recordingAgent{AgentAbs: agents.AgentAbs{Name: "faucet"}, log: &log}

	executeAgents(ctx, []agents.Agent{garden, faucet}, time.Hour)
	require.Equal(t, []string{"garden"}, log)
}

func TestExecuteAgentsWithoutAgentsReturns(t *testing.T) {
	executeAgents(context.Background(), nil, time.Hour)
}

func serverConfig(t *testing.T, garden, faucet bool) *config.Config {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &config.Config{
		WalletAddress:  crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey:     key,
		CompoundGarden: garden,
		CompoundFaucet: faucet,
		MaxTries:       2,
		GasPriceGwei:   5,
		GasLimit:       500000,
		TxnTimeout:     time.Second,
		PollInterval:   time.Millisecond,
		Faucet: config.FaucetConfig{
			ContractAddress: common.HexToAddress("0x00000000000000000000000000000000000000fa"),
			USDToCompound:   1,
			PriceURL:        "http://127.0.0.1:0/",
		},
		Garden: config.GardenConfig{
			ContractAddress:  common.HexToAddress("0x00000000000000000000000000000000000000a1"),
			PlantsToCompound: 1,
			IgnoreSeedRatio:  true,
		},
	}
}

func loadABIs(t *testing.T) (abi.ABI, abi.ABI) {
	faucet, err := abis.Load("", abis.Faucet)
	require.NoError(t, err)
	garden, err := abis.Load("", abis.Garden)
	require.NoError(t, err)
	return faucet, garden
}

func TestNewServerEnabledAgents(t *testing.T) {
	faucetABI, gardenABI := loadABIs(t)
	backend := chaintest.New(faucetABI, gardenABI)

	for _, c := range []struct {
		garden, faucet bool
		names          []string
	}{
		{true, true, []string{agents.GardenAgentName, agents.FaucetAgentName}},
		{true, false, []string{agents.GardenAgentName}},
		{false, true, []string{agents.FaucetAgentName}},
		{false, false, nil},
	} {
		s, err := NewServer(serverConfig(t, c.garden, c.faucet), backend, logrus.New(), metrics.New())
		require.NoError(t, err)
		var names []string
		for _, a := range s.agents {
			names = append(names, a.GetName())
		}
		require.Equal(t, c.names, names)
	}
}

func TestNewServerBadABIFile(t *testing.T) {
	cfg := serverConfig(t, true, false)
	cfg.Garden.ABIFile = "does/not/exist.json"
	_, err := NewServer(cfg, chaintest.New(), logrus.New(), metrics.New())
	require.Error(t, err)
}

func TestServerRunPlantsUntilCancelled(t *testing.T) {
	faucetABI, gardenABI := loadABIs(t)
	backend := chaintest.New(faucetABI, gardenABI)
	backend.SetResult(agents.MethodGetUserSeeds, big.NewInt(300))
	backend.SetResult(agents.MethodHatcheryPlants, big.NewInt(10))
	backend.SetResult(agents.MethodSeedsToGrowPlant, big.NewInt(100))

	s, err := NewServer(serverConfig(t, true, false), backend, logrus.New(), metrics.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return backend.Calls(agents.MethodGetUserSeeds) >= 3
	}, 5*time.Second, time.Millisecond)
	cancel()
	<-done

	// the fake state never changes and a mined plant resets pending to 0, so
	// every cycle plants again
	require.GreaterOrEqual(t, backend.SentCount(), 1)
}
