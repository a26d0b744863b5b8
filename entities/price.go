package entities

// PriceRecord is one entry of the price feed history.
type PriceRecord struct {
	Time  interface{} `json:"time"`
	Value float64     `json:"value"`
}
