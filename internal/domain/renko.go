package domain

import "strings"

// RenkoMode selects how the brick size is resolved.
type RenkoMode string

const (
	RenkoFixed      RenkoMode = "fixed"
	RenkoATR        RenkoMode = "atr"
	RenkoPercentage RenkoMode = "percentage"
)

// ParseRenkoMode converts a string to a RenkoMode. Unknown values map to fixed.
func ParseRenkoMode(s string) RenkoMode {
	switch RenkoMode(strings.ToLower(strings.TrimSpace(s))) {
	case RenkoATR:
		return RenkoATR
	case RenkoPercentage:
		return RenkoPercentage
	default:
		return RenkoFixed
	}
}

// RenkoSettings configures the Renko transform for one computation.
type RenkoSettings struct {
	Mode            RenkoMode `json:"mode" yaml:"mode"`
	FixedBrickSize  float64   `json:"fixedBrickSize" yaml:"fixed_brick_size"`
	ATRPeriod       int       `json:"atrPeriod" yaml:"atr_period"`
	PercentageValue float64   `json:"percentageValue" yaml:"percentage_value"`
}

// DefaultRenkoSettings mirrors the dashboard's initial Renko configuration.
func DefaultRenkoSettings() RenkoSettings {
	return RenkoSettings{
		Mode:            RenkoFixed,
		FixedBrickSize:  1.0,
		ATRPeriod:       14,
		PercentageValue: 1,
	}
}
