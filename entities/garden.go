package entities

import "github.com/sirupsen/logrus"

// GardenData is one poll of the garden contract.
type GardenData struct {
	Seeds            uint64  `json:"seeds"`
	Plants           uint64  `json:"plants"`
	ReadyPlants      uint64  `json:"ready_plants"`
	PlantsToCompound uint64  `json:"plants_to_compound"`
	SeedsPerPlant    uint64  `json:"seeds_per_plant"`
	SeedRemainder    uint64  `json:"seed_remainder"`
	SeedRatio        float64 `json:"seed_ratio"`
}

func (d *GardenData) Fields() logrus.Fields {
	if d == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"seeds":              d.Seeds,
		"plants":             d.Plants,
		"ready_plants":       d.ReadyPlants,
		"plants_to_compound": d.PlantsToCompound,
		"seeds_per_plant":    d.SeedsPerPlant,
		"seed_remainder":     d.SeedRemainder,
		"seed_ratio":         d.SeedRatio,
	}
}
