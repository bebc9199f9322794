// Package stats computes derived herd and device statistics from the record
// store. Every run re-reads full current state and produces one consolidated
// Snapshot; nothing is computed incrementally.
package stats

// Snapshot is the consolidated result of one aggregation run. It is built
// fresh on every run, serialized, broadcast and discarded.
type Snapshot struct {
	DeviceStats         DeviceStats      `json:"deviceStats"`
	BCSStats            BCSStats         `json:"bcsStats"`
	PostureDistribution []PostureBucket  `json:"postureDistribution"`
	PigStats            PigStats         `json:"pigStats"`
	PigHealthStats      HealthStats      `json:"pigHealthStats"`
	PigFertilityStats   FertilityStats   `json:"pigFertilityStats"`
	PigHeatStats        HeatStats        `json:"pigHeatStats"`
	BarnStats           map[string]int   `json:"barnStats"`
	StallStats          StallCountsByBarn `json:"stallStats"`
	FarmBarnStallStats  LocationTotals   `json:"farmBarnStallStats"`
}

// StallCountsByBarn maps barn display name to per-stall pig counts keyed by
// stall display name.
type StallCountsByBarn map[string]map[string]int

// DeviceStats summarizes the device fleet.
type DeviceStats struct {
	OnlineDevices          int     `json:"onlineDevices"`
	TotalDevices           int     `json:"totalDevices"`
	DeviceUsage            int     `json:"deviceUsage"`
	AverageTemperature     float64 `json:"averageTemperature"`
	LatestTemperatureStats float64 `json:"latestTemperatureStats"`
}

// BCSStats summarizes body-condition scores across all historical records.
type BCSStats struct {
	AverageBCS float64 `json:"averageBCS"`
}

// PostureBucket is one distinct posture score with its share of all posture
// records.
type PostureBucket struct {
	Score      int `json:"score"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// PigStats summarizes the herd roster.
type PigStats struct {
	TotalPigs  int     `json:"totalPigs"`
	AverageAge float64 `json:"averageAge"`
}

// HealthStats counts pigs by their most recent health status. Every category
// is always present, zero when no pig matches.
type HealthStats struct {
	TotalAtRisk     int `json:"totalAtRisk"`
	TotalHealthy    int `json:"totalHealthy"`
	TotalCritical   int `json:"totalCritical"`
	TotalNoMovement int `json:"totalNoMovement"`
}

// FertilityStats counts pigs by their most recent fertility status.
type FertilityStats struct {
	InHeat       int `json:"InHeat"`
	PreHeat      int `json:"PreHeat"`
	Open         int `json:"Open"`
	ReadyToBreed int `json:"ReadyToBreed"`
}

// HeatStats counts pigs by their most recent heat status.
type HeatStats struct {
	TotalOpen      int `json:"totalOpen"`
	TotalBred      int `json:"totalBred"`
	TotalPregnant  int `json:"totalPregnant"`
	TotalFarrowing int `json:"totalFarrowing"`
	TotalWeaning   int `json:"totalWeaning"`
}

// LocationTotals counts the location hierarchy.
type LocationTotals struct {
	TotalFarms  int `json:"totalFarms"`
	TotalBarns  int `json:"totalBarns"`
	TotalStalls int `json:"totalStalls"`
}
