// Package importer recreates a bundled analysis and its dependency closure
// in a target QuickSight account.
package importer

import "fmt"

// Strategy defines the behavior when an asset already exists in the target
// account.
type Strategy string

const (
	// StrategyFail aborts the import on the first existing asset.
	StrategyFail Strategy = "fail"

	// StrategyOverwrite updates existing assets in place.
	StrategyOverwrite Strategy = "overwrite"

	// StrategySkip leaves existing assets untouched and continues.
	StrategySkip Strategy = "skip"
)

// IsValid returns true if the strategy is recognized.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFail, StrategyOverwrite, StrategySkip:
		return true
	default:
		return false
	}
}

// AllStrategies returns all supported conflict strategies.
func AllStrategies() []Strategy {
	return []Strategy{StrategyFail, StrategyOverwrite, StrategySkip}
}

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategyFail:
		return "Abort the import when an asset already exists"
	case StrategyOverwrite:
		return "Update existing assets in place"
	case StrategySkip:
		return "Leave existing assets untouched and continue"
	default:
		return "Unknown strategy"
	}
}

// ParseStrategy parses a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("unknown conflict strategy %q (valid: fail, overwrite, skip)", s)
	}
	return strategy, nil
}
