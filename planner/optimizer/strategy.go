package optimizer

import (
	"fmt"
	"strings"
)

// Strategy selects how slots are assigned and stages placed.
type Strategy int

const (
	// Ditto allocates slots bottom-up and greedily groups critical-path edges onto
	// shared servers.
	Ditto Strategy = iota
	// Average gives every stage the same share of the budget.
	Average
	// Ratio gives every stage a share proportional to its alpha.
	Ratio
)

var AllStrategies = []Strategy{Ditto, Average, Ratio}

var strategyNames = map[Strategy]string{
	Ditto:   "DITTO",
	Average: "AVERAGE",
	Ratio:   "RATIO",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts a strategy name in any case.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q, supported values are %v", name, AllStrategies)
}

func ParseStrategies(names []string) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}
