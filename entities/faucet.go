package entities

import "github.com/sirupsen/logrus"

// FaucetData is one poll of the faucet contract. Token amounts are in DRIP.
type FaucetData struct {
	Deposits      float64 `json:"deposits"`
	Available     float64 `json:"available"`
	Price         float64 `json:"price"`
	DepositsUSD   float64 `json:"deposits_usd"`
	AvailableUSD  float64 `json:"available_usd"`
	USDToCompound float64 `json:"usd_to_compound"`
}

func (d *FaucetData) Fields() logrus.Fields {
	if d == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"deposits":        d.Deposits,
		"available":       d.Available,
		"price":           d.Price,
		"deposits_usd":    d.DepositsUSD,
		"available_usd":   d.AvailableUSD,
		"usd_to_compound": d.USDToCompound,
	}
}
