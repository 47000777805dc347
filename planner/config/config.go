package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ditto/planner/domain"
	"github.com/twitter/ditto/planner/optimizer"
)

// Server pool types
const (
	UniformServers  = "uniform"  // Count servers of SlotsPerServer slots each
	ExplicitServers = "explicit" // one server per entry of Slots
)

// Slot budget for jobs that don't set one and no other config does either.
const DefaultJobSlots = 16

// JSONConfigs config structure holding original json configs
type JSONConfigs struct {
	Servers ServersJSONConfig `json:"Servers"`
	Planner PlannerJSONConfig `json:"Planner"`
}

func (c JSONConfigs) String() string {
	return fmt.Sprintf("\n%s\n%s", c.Servers, c.Planner)
}

type ServersJSONConfig struct {
	Type           string `json:"Type"`           // uniform, explicit
	Count          int    `json:"Count"`          // uniform only
	SlotsPerServer int    `json:"SlotsPerServer"` // uniform only
	Slots          []int  `json:"Slots"`          // explicit only
}

func (c ServersJSONConfig) String() string {
	return fmt.Sprintf("ServersJSONConfig: Type: %s, Count: %d, SlotsPerServer: %d, Slots: %v",
		c.Type, c.Count, c.SlotsPerServer, c.Slots)
}

// CreateServers builds a fresh, empty server pool. Every call returns a new pool.
func (c ServersJSONConfig) CreateServers() (domain.Servers, error) {
	switch c.Type {
	case UniformServers:
		if c.Count <= 0 || c.SlotsPerServer <= 0 {
			return nil, fmt.Errorf("uniform servers need a positive Count and SlotsPerServer, got %d x %d", c.Count, c.SlotsPerServer)
		}
		capacities := make([]int, c.Count)
		for i := range capacities {
			capacities[i] = c.SlotsPerServer
		}
		return domain.NewServers(capacities...), nil
	case ExplicitServers:
		if len(c.Slots) == 0 {
			return nil, fmt.Errorf("explicit servers need at least one Slots entry")
		}
		for i, s := range c.Slots {
			if s <= 0 {
				return nil, fmt.Errorf("server %d has %d slots", i, s)
			}
		}
		return domain.NewServers(c.Slots...), nil
	default:
		return nil, fmt.Errorf("unknown Servers type %q", c.Type)
	}
}

type PlannerJSONConfig struct {
	Type            string   `json:"Type"`            // default
	Strategies      []string `json:"Strategies"`      // default to every strategy
	DefaultJobSlots int      `json:"DefaultJobSlots"` // default to 16
	Parallel        bool     `json:"Parallel"`        // run the strategies of a job concurrently
}

func (c PlannerJSONConfig) String() string {
	return fmt.Sprintf("PlannerJSONConfig: Type: %s, Strategies: %v, DefaultJobSlots: %d, Parallel: %t",
		c.Type, c.Strategies, c.DefaultJobSlots, c.Parallel)
}

// PlannerConfig is the validated form of PlannerJSONConfig.
type PlannerConfig struct {
	Strategies      []optimizer.Strategy
	DefaultJobSlots int
	Parallel        bool
}

func (c PlannerJSONConfig) CreatePlannerConfig() (*PlannerConfig, error) {
	pc := &PlannerConfig{
		Strategies:      optimizer.AllStrategies,
		DefaultJobSlots: c.DefaultJobSlots,
		Parallel:        c.Parallel,
	}
	if len(c.Strategies) > 0 {
		strategies, err := optimizer.ParseStrategies(c.Strategies)
		if err != nil {
			return nil, err
		}
		pc.Strategies = strategies
	}
	if pc.DefaultJobSlots == 0 {
		pc.DefaultJobSlots = DefaultJobSlots
	}
	if pc.DefaultJobSlots < 0 {
		return nil, fmt.Errorf("negative DefaultJobSlots %d", pc.DefaultJobSlots)
	}
	return pc, nil
}

// GetConfigText returns the named config, or configSelector itself when it is literal
// JSON text.
func GetConfigText(configSelector string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(configSelector), "{") {
		return []byte(configSelector), nil
	}
	configText, ok := PlannerConfigs[configSelector]
	if !ok {
		return nil, fmt.Errorf("invalid configuration %s, supported values are %v", configSelector, ConfigNames())
	}
	return []byte(configText), nil
}

// ConfigNames lists the named configs in sorted order.
func ConfigNames() []string {
	keys := make([]string, 0, len(PlannerConfigs))
	for k := range PlannerConfigs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetPlannerConfigs parses the selected config. Sections whose Type is empty take the
// values of the default config.
func GetPlannerConfigs(configSelector string) (*JSONConfigs, error) {
	defaultConfigText, _ := GetConfigText("default")
	defaultConfig := &JSONConfigs{}
	if err := json.Unmarshal(defaultConfigText, defaultConfig); err != nil {
		return nil, errors.Wrap(err, "couldn't parse the default config")
	}

	configText, err := GetConfigText(configSelector)
	if err != nil {
		return nil, err
	}

	configs := &JSONConfigs{}
	if err := json.Unmarshal(configText, configs); err != nil {
		return nil, errors.Wrap(err, "couldn't parse top-level config")
	}

	if configs.Servers.Type == "" {
		log.Infof("using default Servers config")
		configs.Servers = defaultConfig.Servers
	}
	if configs.Planner.Type == "" {
		log.Infof("using default Planner config")
		configs.Planner = defaultConfig.Planner
	}
	return configs, nil
}
