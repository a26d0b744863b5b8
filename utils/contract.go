package utils

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultReceiptTimeout      = 120 * time.Second
	DefaultReceiptPollInterval = 2 * time.Second
)

// ChainBackend is the subset of the node API the agents need. *ethclient.Client
// satisfies it.
type ChainBackend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// DialChain connects to an EVM JSON-RPC endpoint.
func DialChain(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return nil, errors.New("rpc host is not configured")
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", rpcURL)
	}
	return client, nil
}

// TxOpts carries what is needed to build and sign a transaction.
type TxOpts struct {
	From                common.Address
	PrivateKey          *ecdsa.PrivateKey
	GasPrice            *big.Int
	GasLimit            uint64
	ReceiptTimeout      time.Duration
	ReceiptPollInterval time.Duration
}

// Contract binds an ABI to a deployed address on a backend.
type Contract struct {
	Address common.Address
	ABI     abi.ABI
	backend ChainBackend

	mu      sync.Mutex
	chainID *big.Int
}

func NewContract(address common.Address, contractABI abi.ABI, backend ChainBackend) *Contract {
	return &Contract{
		Address: address,
		ABI:     contractABI,
		backend: backend,
	}
}

// Call performs a single read-only call and returns the decoded outputs.
func (c *Contract) Call(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, Permanent(errors.Wrapf(err, "pack %s", method))
	}
	to := c.Address
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	values, err := c.ABI.Unpack(method, output)
	if err != nil {
		return nil, Permanent(errors.Wrapf(err, "unpack %s", method))
	}
	return values, nil
}

// Read is Call retried up to attempts times with no delay between attempts.
func (c *Contract) Read(ctx context.Context, logger *logrus.Entry, attempts int, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	var values []interface{}
	err := Retry(ctx, logger, attempts, 0, func(int) error {
		var err error
		values, err = c.Call(ctx, from, method, args...)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", method)
	}
	return values, nil
}

// ReadUint is Read for methods returning a single uint256, or for picking
// output index out of a multi-value return.
func (c *Contract) ReadUint(ctx context.Context, logger *logrus.Entry, attempts int, from common.Address, index int, method string, args ...interface{}) (*big.Int, error) {
	values, err := c.Read(ctx, logger, attempts, from, method, args...)
	if err != nil {
		return nil, err
	}
	if index >= len(values) {
		return nil, Permanent(errors.Errorf("%s returned %d values, wanted index %d", method, len(values), index))
	}
	v, ok := values[index].(*big.Int)
	if !ok {
		return nil, Permanent(errors.Errorf("%s output %d is %T, not uint", method, index, values[index]))
	}
	return v, nil
}

// Transact builds, signs and sends one transaction calling method, then
// waits for its receipt.
func (c *Contract) Transact(ctx context.Context, opts TxOpts, method string, args ...interface{}) (*types.Receipt, error) {
	if opts.PrivateKey == nil {
		return nil, Permanent(errors.New("private key is nil"))
	}
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, Permanent(errors.Wrapf(err, "pack %s", method))
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	// Latest, not pending: a retry after a lost receipt reuses the nonce
	// instead of queueing a second call.
	nonce, err := c.backend.NonceAt(ctx, opts.From, nil)
	if err != nil {
		return nil, errors.Wrap(err, "get nonce")
	}

	to := c.Address
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: opts.GasPrice,
		Gas:      opts.GasLimit,
		To:       &to,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), opts.PrivateKey)
	if err != nil {
		return nil, Permanent(errors.Wrap(err, "sign transaction"))
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, errors.Wrapf(err, "send %s transaction", method)
	}
	return c.waitMined(ctx, signed.Hash(), opts)
}

// ChainID returns the backend chain id, asking the node only once.
func (c *Contract) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get chain id")
	}
	c.chainID = id
	return id, nil
}

func (c *Contract) waitMined(ctx context.Context, hash common.Hash, opts TxOpts) (*types.Receipt, error) {
	timeout := opts.ReceiptTimeout
	if timeout <= 0 {
		timeout = DefaultReceiptTimeout
	}
	interval := opts.ReceiptPollInterval
	if interval <= 0 {
		interval = DefaultReceiptPollInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for receipt of %s", hash.Hex())
		case <-ticker.C:
		}
	}
}
