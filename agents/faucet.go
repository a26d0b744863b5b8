package agents

import (
	"context"
	"encoding/json"

	"dripcompounder/abis"
	"dripcompounder/config"
	"dripcompounder/entities"
	"dripcompounder/metrics"
	"dripcompounder/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FaucetCompounder rolls faucet rewards back into the deposit.
type FaucetCompounder struct {
	AgentAbs
	PriceClient  *utils.RestfulClient
	pendingBatch uint64
}

func NewFaucetCompounder(cfg *config.Config, backend utils.ChainBackend, logger *logrus.Logger, m *metrics.Metrics) (*FaucetCompounder, error) {
	parsed, err := abis.Load(cfg.Faucet.ABIFile, abis.Faucet)
	if err != nil {
		return nil, errors.Wrap(err, "faucet abi")
	}
	contract := utils.NewContract(cfg.Faucet.ContractAddress, parsed, backend)
	return &FaucetCompounder{
		AgentAbs:    newAgentAbs(FaucetAgentID, FaucetAgentName, cfg, contract, logger, m),
		PriceClient: utils.NewRestfulClient(cfg.Faucet.PriceURL, ""),
	}, nil
}

// PendingBatch is the last recorded batch still waiting to be rolled.
func (f *FaucetCompounder) PendingBatch() uint64 {
	return f.pendingBatch
}

func (f *FaucetCompounder) getUserDeposits(ctx context.Context) (float64, error) {
	v, err := f.readUint(ctx, userInfoTotalsDeposits, MethodUserInfoTotals, f.Config.WalletAddress)
	if err != nil {
		return 0, err
	}
	return FromBaseUnits(v, TokenDecimals), nil
}

func (f *FaucetCompounder) getUserAvailable(ctx context.Context) (float64, error) {
	v, err := f.readUint(ctx, 0, MethodClaimsAvailable, f.Config.WalletAddress)
	if err != nil {
		return 0, err
	}
	return FromBaseUnits(v, TokenDecimals), nil
}

// getDripPrice returns the value of the newest record of the price feed.
func (f *FaucetCompounder) getDripPrice(ctx context.Context) (float64, error) {
	var price float64
	err := utils.Retry(ctx, f.Logger, f.Config.MaxTries, 0, func(int) error {
		body, err := f.PriceClient.Get(ctx, "", nil, nil)
		if err != nil {
			return err
		}
		var records []entities.PriceRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return errors.Wrap(err, "decode price feed")
		}
		if len(records) == 0 {
			return errors.New("price feed returned no records")
		}
		price = records[len(records)-1].Value
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "get drip price")
	}
	return price, nil
}

// Poll reads the faucet state and derives its USD values. A nil result means
// one of the reads gave up.
func (f *FaucetCompounder) Poll(ctx context.Context) (*entities.FaucetData, error) {
	deposits, err := f.getUserDeposits(ctx)
	if err != nil {
		return nil, err
	}
	available, err := f.getUserAvailable(ctx)
	if err != nil {
		return nil, err
	}
	price, err := f.getDripPrice(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.FaucetData{
		Deposits:      deposits,
		Available:     available,
		Price:         price,
		DepositsUSD:   USDValue(deposits, price),
		AvailableUSD:  USDValue(available, price),
		USDToCompound: f.Config.Faucet.USDToCompound,
	}, nil
}

func (f *FaucetCompounder) checkNewFaucetBatch(ready uint64) bool {
	if IsNewQuantity(ready, f.pendingBatch) {
		f.Logger.Debugf("Ready faucet batch: %d which is greater than %d", ready, f.pendingBatch)
		return true
	}
	f.Logger.Debugf("Ready faucet batch: %d should be greater than %d", ready, f.pendingBatch)
	return false
}

func (f *FaucetCompounder) rollBatch(ctx context.Context, ready uint64) uint64 {
	return f.submitWithRetry(ctx, "roll faucet batch", ready, MethodRoll)
}

func (f *FaucetCompounder) Execute(ctx context.Context) {
	f.Logger.Info("Faucet agent is executing...")
	f.countExecution()

	data, err := f.Poll(ctx)
	if err != nil {
		f.Logger.Warnf("Could not poll faucet: %v", err)
		f.countPollError()
		return
	}
	f.Logger.WithFields(data.Fields()).Info("Faucet polled")
	f.observe("available_usd", data.AvailableUSD)
	f.observe("deposits_usd", data.DepositsUSD)
	f.observe("price", data.Price)

	if data.AvailableUSD < data.USDToCompound {
		return
	}
	ready := FaucetBatch(data.AvailableUSD, data.USDToCompound)
	if !f.checkNewFaucetBatch(ready) {
		return
	}
	f.pendingBatch = f.rollBatch(ctx, ready)
	f.setPending(f.pendingBatch)
}
