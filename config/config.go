// Package config builds the immutable agent configuration from command line
// flags, environment variables and ini files.
package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when the wallet address or key is unset.
var ErrMissingCredentials = errors.New("wallet address and private key are required")

const (
	DefaultRPCHost  = "https://bsc-dataseed.binance.org:443"
	DefaultPriceURL = "https://api.drip.community/prices/"
)

var defaultConfigFiles = []string{"config_global.ini", "config_user.ini"}

type Config struct {
	WalletAddress  common.Address
	PrivateKey     *ecdsa.PrivateKey
	CompoundGarden bool
	CompoundFaucet bool

	MaxTries       int
	LogLevel       string
	LogFile        string
	RPCHost        string
	GasPriceGwei   float64
	GasLimit       uint64
	TxnTimeout     time.Duration
	PollInterval   time.Duration
	TxRetryDelay   time.Duration
	MetricsAddress string

	Faucet FaucetConfig
	Garden GardenConfig
}

type FaucetConfig struct {
	ContractAddress common.Address
	ABIFile         string
	USDToCompound   float64
	PriceURL        string
}

type GardenConfig struct {
	ContractAddress          common.Address
	ABIFile                  string
	CompoundPlantsGrownInDay bool
	PlantsToCompound         uint64
	SeedRatioAllowed         float64
	IgnoreSeedRatio          bool
}

// GasPriceWei converts the configured gwei price to wei.
func (c *Config) GasPriceWei() *big.Int {
	wei, _ := new(big.Float).Mul(big.NewFloat(c.GasPriceGwei), big.NewFloat(params.GWei)).Int(nil)
	return wei
}

// NewFlagSet declares the command line of the agent.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("autocompounder", pflag.ContinueOnError)
	fs.StringP("wallet-address", "w", "", "Your wallet address. Can use env var WALLET_ADDRESS")
	fs.StringP("private-key", "k", "", "Your private key. Can use env var PRIVATE_KEY")
	fs.BoolP("garden", "g", false, "Autocompound drip garden. Can use env var COMPOUND_GARDEN")
	fs.BoolP("faucet", "f", false, "Autocompound drip faucet. Can use env var COMPOUND_FAUCET")
	fs.StringSliceP("config", "c", defaultConfigFiles, "Ini files to read, later files override earlier ones")
	fs.String("env-file", ".env", "Optional dotenv file loaded before reading the environment")
	return fs
}

// Load parses args with fs and assembles the configuration.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	envFile, _ := fs.GetString("env-file")
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.Wrapf(err, "load %s", envFile)
			}
		}
	}

	v := newViper()
	bindings := map[string][2]string{
		"wallet_address":  {"wallet-address", "WALLET_ADDRESS"},
		"private_key":     {"private-key", "PRIVATE_KEY"},
		"compound_garden": {"garden", "COMPOUND_GARDEN"},
		"compound_faucet": {"faucet", "COMPOUND_FAUCET"},
	}
	for key, b := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(b[0])); err != nil {
			return nil, err
		}
		if err := v.BindEnv(key, b[1]); err != nil {
			return nil, err
		}
	}

	files, _ := fs.GetStringSlice("config")
	if err := readFiles(v, files); err != nil {
		return nil, err
	}

	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("ini")
	v.SetEnvPrefix("AUTOCOMPOUNDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("general.max_tries", 3)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.log_file", "autocompounder.log")
	v.SetDefault("general.rpc_host", DefaultRPCHost)
	v.SetDefault("general.gas_price", 5)
	v.SetDefault("general.gas", 500000)
	v.SetDefault("general.txn_timeout", 120)
	v.SetDefault("general.poll_interval", 5)
	v.SetDefault("general.tx_retry_delay", 10)
	v.SetDefault("general.metrics_address", "")
	v.SetDefault("faucet.price_url", DefaultPriceURL)
	v.SetDefault("faucet.usd_to_compound", 1)
	v.SetDefault("garden.plants_to_compound", 1)
	v.SetDefault("garden.seed_ratio_allowed", 0)
	v.SetDefault("garden.compound_plants_grown_in_day", "false")
	v.SetDefault("garden.ignore_seed_ratio", "false")
	return v
}

// readFiles merges every existing file in order; missing files are skipped.
func readFiles(v *viper.Viper, files []string) error {
	for _, path := range files {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	wallet := strings.TrimSpace(v.GetString("wallet_address"))
	key := strings.TrimSpace(v.GetString("private_key"))
	if wallet == "" || key == "" {
		return nil, ErrMissingCredentials
	}
	if !common.IsHexAddress(wallet) {
		return nil, errors.Errorf("invalid wallet address %q", wallet)
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}

	cfg := &Config{
		WalletAddress: common.HexToAddress(wallet),
		PrivateKey:    privateKey,

		MaxTries:       v.GetInt("general.max_tries"),
		LogLevel:       v.GetString("general.log_level"),
		LogFile:        v.GetString("general.log_file"),
		RPCHost:        v.GetString("general.rpc_host"),
		GasPriceGwei:   v.GetFloat64("general.gas_price"),
		GasLimit:       v.GetUint64("general.gas"),
		TxnTimeout:     seconds(v.GetFloat64("general.txn_timeout")),
		PollInterval:   seconds(v.GetFloat64("general.poll_interval")),
		TxRetryDelay:   seconds(v.GetFloat64("general.tx_retry_delay")),
		MetricsAddress: v.GetString("general.metrics_address"),

		Faucet: FaucetConfig{
			ABIFile:       v.GetString("faucet.abi_file"),
			USDToCompound: v.GetFloat64("faucet.usd_to_compound"),
			PriceURL:      v.GetString("faucet.price_url"),
		},
		Garden: GardenConfig{
			ABIFile:          v.GetString("garden.abi_file"),
			PlantsToCompound: v.GetUint64("garden.plants_to_compound"),
			SeedRatioAllowed: v.GetFloat64("garden.seed_ratio_allowed"),
		},
	}

	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"compound_garden", &cfg.CompoundGarden},
		{"compound_faucet", &cfg.CompoundFaucet},
		{"garden.compound_plants_grown_in_day", &cfg.Garden.CompoundPlantsGrownInDay},
		{"garden.ignore_seed_ratio", &cfg.Garden.IgnoreSeedRatio},
	} {
		*b.dst, err = ParseBool(v.GetString(b.key))
		if err != nil {
			return nil, errors.Wrap(err, b.key)
		}
	}

	if cfg.Faucet.ContractAddress, err = address(v.GetString("faucet.contract_address")); err != nil {
		return nil, errors.Wrap(err, "faucet.contract_address")
	}
	if cfg.Garden.ContractAddress, err = address(v.GetString("garden.contract_address")); err != nil {
		return nil, errors.Wrap(err, "garden.contract_address")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the enabled agents depend on.
func (c *Config) Validate() error {
	if derived := crypto.PubkeyToAddress(c.PrivateKey.PublicKey); derived != c.WalletAddress {
		return errors.Errorf("private key belongs to %s, not wallet %s", derived.Hex(), c.WalletAddress.Hex())
	}
	if c.MaxTries < 1 {
		return errors.New("general.max_tries must be at least 1")
	}
	if c.GasLimit == 0 {
		return errors.New("general.gas must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("general.poll_interval must be positive")
	}
	if c.CompoundFaucet {
		if c.Faucet.ContractAddress == (common.Address{}) {
			return errors.New("faucet.contract_address is required when the faucet is enabled")
		}
		if c.Faucet.USDToCompound <= 0 {
			return errors.New("faucet.usd_to_compound must be positive")
		}
	}
	if c.CompoundGarden && c.Garden.ContractAddress == (common.Address{}) {
		return errors.New("garden.contract_address is required when the garden is enabled")
	}
	return nil
}

// ParseBool accepts the boolean spellings of ini files: 1/yes/true/on and
// 0/no/false/off. Empty means false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "no", "false", "off":
		return false, nil
	case "1", "yes", "true", "on":
		return true, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func address(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
