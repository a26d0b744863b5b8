// Package chaintest provides an in-memory chain backend for tests. Calls are
// answered from canned outputs packed with the contract ABI; sent
// transactions are recorded and mined immediately.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend implements utils.ChainBackend.
type Backend struct {
	mu      sync.Mutex
	abis    []abi.ABI
	results map[string][]interface{}
	fails   map[string]int
	calls   map[string]int

	ChainIDValue *big.Int
	Nonce        uint64
	SendErr      error
	// ReceiptStatuses is consumed one entry per sent transaction; once empty
	// every receipt is successful.
	ReceiptStatuses []uint64
	// Unmined makes TransactionReceipt report not found forever.
	Unmined bool

	Sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func New(abis ...abi.ABI) *Backend {
	return &Backend{
		abis:         abis,
		results:      map[string][]interface{}{},
		fails:        map[string]int{},
		calls:        map[string]int{},
		receipts:     map[common.Hash]*types.Receipt{},
		ChainIDValue: big.NewInt(56),
	}
}

// SetResult sets the outputs returned for method.
func (b *Backend) SetResult(method string, outputs ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[method] = outputs
}

// FailCalls makes the next n calls of method fail. A negative n fails forever.
func (b *Backend) FailCalls(method string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails[method] = n
}

// Calls returns how many times method was called.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// SentCount returns the number of transactions received.
func (b *Backend) SentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Sent)
}

func (b *Backend) method(data []byte) (*abi.Method, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("short calldata")
	}
	for _, a := range b.abis {
		if m, err := a.MethodById(data[:4]); err == nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown selector %x", data[:4])
}

func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.method(call.Data)
	if err != nil {
		return nil, err
	}
	b.calls[m.Name]++
	if n := b.fails[m.Name]; n != 0 {
		if n > 0 {
			b.fails[m.Name] = n - 1
		}
		return nil, fmt.Errorf("rpc unavailable")
	}
	outputs, ok := b.results[m.Name]
	if !ok {
		return nil, fmt.Errorf("no result for %s", m.Name)
	}
	return m.Outputs.Pack(outputs...)
}

func (b *Backend) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Nonce, nil
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SendErr != nil {
		return b.SendErr
	}
	status := types.ReceiptStatusSuccessful
	if len(b.ReceiptStatuses) > 0 {
		status = b.ReceiptStatuses[0]
		b.ReceiptStatuses = b.ReceiptStatuses[1:]
	}
	b.Sent = append(b.Sent, tx)
	b.Nonce++
	b.receipts[tx.Hash()] = &types.Receipt{Status: status, TxHash: tx.Hash()}
	return nil
}

func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Unmined {
		return nil, ethereum.NotFound
	}
	r, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.ChainIDValue), nil
}

// MethodOf decodes which ABI method a transaction invokes.
func (b *Backend) MethodOf(tx *types.Transaction) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.method(tx.Data())
	if err != nil {
		return "", err
	}
	return m.Name, nil
}
