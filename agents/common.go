package agents

import (
	"context"
	"fmt"
	"math/big"

	"dripcompounder/utils"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

func (a *AgentAbs) txOpts() utils.TxOpts {
	return utils.TxOpts{
		From:           a.Config.WalletAddress,
		PrivateKey:     a.Config.PrivateKey,
		GasPrice:       a.Config.GasPriceWei(),
		GasLimit:       a.Config.GasLimit,
		ReceiptTimeout: a.Config.TxnTimeout,
	}
}

// readUint is the retry-wrapped read every poll goes through.
func (a *AgentAbs) readUint(ctx context.Context, index int, method string, args ...interface{}) (*big.Int, error) {
	return a.Contract.ReadUint(ctx, a.Logger, a.Config.MaxTries, a.Config.WalletAddress, index, method, args...)
}

func toUint64(method string, v *big.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, utils.Permanent(errors.Errorf("%s returned %s, out of range", method, v.String()))
	}
	return v.Uint64(), nil
}

// submitWithRetry sends method until a successful receipt or until the retry
// budget runs out, and returns the pending quantity to record: 0 once the
// action went through, ready otherwise.
func (a *AgentAbs) submitWithRetry(ctx context.Context, action string, ready uint64, method string, args ...interface{}) uint64 {
	opts := a.txOpts()
	err := utils.Retry(ctx, a.Logger, a.Config.MaxTries, a.Config.TxRetryDelay, func(attempt int) error {
		receipt, err := a.Contract.Transact(ctx, opts, method, args...)
		if err != nil {
			return err
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			a.Logger.Infof("Could not %s.", action)
			a.Logger.Debugf("Receipt: %+v", receipt)
			return errors.Errorf("transaction %s failed with status %d", receipt.TxHash.Hex(), receipt.Status)
		}
		a.Logger.Infof("%s succeeded with TxID: %s", action, receipt.TxHash.Hex())
		return nil
	})
	if err != nil {
		msg := fmt.Sprintf("%s: could not %s for %d ready, with err: %v", a.Name, action, ready, err)
		a.Logger.Error(msg)
		utils.SendSlackNotification(msg)
		a.countSubmission("failed")
		return ready
	}
	utils.SendSlackNotification(fmt.Sprintf("%s: %s succeeded (%d ready)", a.Name, action, ready))
	a.countSubmission("success")
	return 0
}

func (a *AgentAbs) countSubmission(status string) {
	if a.Metrics != nil {
		a.Metrics.Submissions.WithLabelValues(a.Name, status).Inc()
	}
}

func (a *AgentAbs) countExecution() {
	if a.Metrics != nil {
		a.Metrics.Executions.WithLabelValues(a.Name).Inc()
	}
}

func (a *AgentAbs) countPollError() {
	if a.Metrics != nil {
		a.Metrics.PollErrors.WithLabelValues(a.Name).Inc()
	}
}

func (a *AgentAbs) observe(field string, v float64) {
	if a.Metrics != nil {
		a.Metrics.Observed.WithLabelValues(a.Name, field).Set(v)
	}
}

func (a *AgentAbs) setPending(v uint64) {
	if a.Metrics != nil {
		a.Metrics.Pending.WithLabelValues(a.Name).Set(float64(v))
	}
}
