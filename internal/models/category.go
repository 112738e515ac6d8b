package models

import (
	"encoding/json"
	"fmt"
)

// RiskLevel orders categories by hazard: Low < Medium < Medium-High < High < Critical.
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskMediumHigh
	RiskHigh
	RiskCritical
)

var riskNames = map[RiskLevel]string{
	RiskLow:        "Low",
	RiskMedium:     "Medium",
	RiskMediumHigh: "Medium-High",
	RiskHigh:       "High",
	RiskCritical:   "Critical",
}

func (r RiskLevel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RiskLevel(%d)", int(r))
}

// MarshalJSON renders the level by name, e.g. "Medium-High".
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	name, ok := riskNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown risk level %d", int(r))
	}
	return json.Marshal(name)
}

// UnmarshalJSON accepts the level name.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for lvl, n := range riskNames {
		if n == name {
			*r = lvl
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", name)
}

// RecyclingValue is the scrap value tier of a category.
type RecyclingValue string

const (
	ValueLow      RecyclingValue = "Low"
	ValueModerate RecyclingValue = "Moderate"
	ValueHigh     RecyclingValue = "High"
)

// Category is one entry of the static waste category table.
type Category struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon"`
	Risk      RiskLevel      `json:"risk"`
	Impact    string         `json:"impact"`
	Recycle   string         `json:"recycle"`
	Materials []string       `json:"materials"`
	Value     RecyclingValue `json:"value"`
	CO2Saved  float64        `json:"co2Saved"` // kg CO2e saved by recycling one unit
}
