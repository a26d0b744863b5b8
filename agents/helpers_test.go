package agents

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dripcompounder/abis"
	"dripcompounder/config"
	"dripcompounder/metrics"
	"dripcompounder/utils/chaintest"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func testConfig(t *testing.T, priceURL string) *config.Config {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &config.Config{
		WalletAddress:  crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey:     key,
		CompoundGarden: true,
		CompoundFaucet: true,
		MaxTries:       3,
		GasPriceGwei:   5,
		GasLimit:       500000,
		TxnTimeout:     time.Second,
		PollInterval:   time.Millisecond,
		Faucet: config.FaucetConfig{
			ContractAddress: common.HexToAddress("0x00000000000000000000000000000000000000fa"),
			USDToCompound:   10,
			PriceURL:        priceURL,
		},
		Garden: config.GardenConfig{
			ContractAddress:  common.HexToAddress("0x00000000000000000000000000000000000000a1"),
			PlantsToCompound: 1,
			SeedRatioAllowed: 0.4,
		},
	}
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	return l
}

// priceServer serves a fixed price history; the last value is the current price.
func priceServer(t *testing.T, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFaucetFixture(t *testing.T, priceBody string) (*FaucetCompounder, *chaintest.Backend, *metrics.Metrics) {
	srv := priceServer(t, priceBody)
	cfg := testConfig(t, srv.URL+"/prices/")
	parsed, err := abis.Load("", abis.Faucet)
	require.NoError(t, err)
	backend := chaintest.New(parsed)
	m := metrics.New()
	f, err := NewFaucetCompounder(cfg, backend, testLogger(), m)
	require.NoError(t, err)
	return f, backend, m
}

func newGardenFixture(t *testing.T, mutate func(*config.Config)) (*GardenCompounder, *chaintest.Backend, *metrics.Metrics) {
	cfg := testConfig(t, "")
	if mutate != nil {
		mutate(cfg)
	}
	parsed, err := abis.Load("", abis.Garden)
	require.NoError(t, err)
	backend := chaintest.New(parsed)
	m := metrics.New()
	g, err := NewGardenCompounder(cfg, backend, testLogger(), m)
	require.NoError(t, err)
	return g, backend, m
}
