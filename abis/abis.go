// Package abis holds the contract interfaces the agents talk to.
package abis

import (
	_ "embed"
	"io/ioutil"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

//go:embed Faucet.json
var Faucet []byte

//go:embed Garden.json
var Garden []byte

// Load parses the ABI at path, or fallback when path is empty.
func Load(path string, fallback []byte) (abi.ABI, error) {
	raw := fallback
	if strings.TrimSpace(path) != "" {
		content, err := ioutil.ReadFile(path)
		if err != nil {
			return abi.ABI{}, errors.Wrapf(err, "read abi file %s", path)
		}
		raw = content
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return abi.ABI{}, errors.Wrap(err, "parse abi")
	}
	return parsed, nil
}
