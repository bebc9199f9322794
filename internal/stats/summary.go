package stats

import (
	"math"
	"sort"

	"farmsight.dev/farmsight/internal/store"
)

// PigSummary is the roster-level analytics rollup served on the pull API.
type PigSummary struct {
	TotalPigs         int           `json:"totalPigs"`
	AvgBCS            float64       `json:"avgBCS"`
	AvgAge            float64       `json:"avgAge"`
	BreedDistribution []BreedBucket `json:"breedDistribution"`
}

// BreedBucket is one breed with its share of the roster.
type BreedBucket struct {
	Breed      string  `json:"breed"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DeviceSummary is the fleet-level analytics rollup served on the pull API.
type DeviceSummary struct {
	TotalDevices   int     `json:"totalDevices"`
	OnlineCount    int     `json:"onlineCount"`
	OfflineCount   int     `json:"offlineCount"`
	WarningCount   int     `json:"warningCount"`
	AvgTemperature float64 `json:"avgTemperature"`
}

// ComputePigSummary rolls the roster up into totals, averages and a breed
// distribution. Averages and percentages are rounded to two decimals and are
// exactly zero on an empty roster.
func ComputePigSummary(pigs []store.Pig) PigSummary {
	summary := PigSummary{
		TotalPigs:         len(pigs),
		BreedDistribution: []BreedBucket{},
	}
	if len(pigs) == 0 {
		return summary
	}

	totalBCS := 0.0
	totalAge := 0
	byBreed := make(map[string]int)
	for _, pig := range pigs {
		totalBCS += pig.BCSScore
		totalAge += pig.Age
		byBreed[pig.Breed]++
	}

	summary.AvgBCS = round2(totalBCS / float64(len(pigs)))
	summary.AvgAge = round2(float64(totalAge) / float64(len(pigs)))

	breeds := make([]string, 0, len(byBreed))
	for breed := range byBreed {
		breeds = append(breeds, breed)
	}
	sort.Strings(breeds)

	for _, breed := range breeds {
		count := byBreed[breed]
		summary.BreedDistribution = append(summary.BreedDistribution, BreedBucket{
			Breed:      breed,
			Count:      count,
			Percentage: round2(float64(count) / float64(len(pigs)) * 100),
		})
	}

	return summary
}

// ComputeDeviceSummary rolls the device fleet up into per-status counts and
// the average of last-known temperatures.
func ComputeDeviceSummary(devices []store.Device) DeviceSummary {
	summary := DeviceSummary{TotalDevices: len(devices)}
	if len(devices) == 0 {
		return summary
	}

	totalTemp := 0.0
	for _, device := range devices {
		totalTemp += device.Temperature
		switch device.Status {
		case store.DeviceStatusOnline:
			summary.OnlineCount++
		case store.DeviceStatusOffline:
			summary.OfflineCount++
		case store.DeviceStatusWarning:
			summary.WarningCount++
		}
	}

	summary.AvgTemperature = round2(totalTemp / float64(len(devices)))
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
