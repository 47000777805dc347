package config

// PlannerConfigs the map of available configurations
var PlannerConfigs = map[string]string{
	"default":     defaultConfig,
	"local.small": localSmall,
	"local.large": localLarge,
}

// defaultConfig the values used for sections a specific configuration leaves out
const defaultConfig = `{
	"Servers": {
		"Type": "uniform",
		"Count": 4,
		"SlotsPerServer": 16
	},
	"Planner": {
		"Type": "default",
		"Strategies": ["DITTO", "AVERAGE", "RATIO"],
		"DefaultJobSlots": 16
	}
}`

// localSmall a handful of uneven servers - !!! make sure this constant is added to PlannerConfigs map above !!!
const localSmall = `{
	"Servers": {
		"Type": "explicit",
		"Slots": [8, 4, 4, 2]
	}
}`

// localLarge a wide uniform pool, strategies run concurrently - !!! make sure this constant is added to PlannerConfigs map above !!!
const localLarge = `{
	"Servers": {
		"Type": "uniform",
		"Count": 32,
		"SlotsPerServer": 64
	},
	"Planner": {
		"Type": "default",
		"DefaultJobSlots": 256,
		"Parallel": true
	}
}`
