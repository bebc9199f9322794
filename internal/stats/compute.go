package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"farmsight.dev/farmsight/internal/store"
)

// Canonical status categories. Raw records may carry any casing or separator;
// NormalizeStatus folds them onto these keys.
const (
	HealthAtRisk     = "at-risk"
	HealthHealthy    = "healthy"
	HealthCritical   = "critical"
	HealthNoMovement = "no-movement"

	FertilityInHeat       = "in-heat"
	FertilityPreHeat      = "pre-heat"
	FertilityOpen         = "open"
	FertilityReadyToBreed = "ready-to-breed"

	HeatOpen      = "open"
	HeatBred      = "bred"
	HeatPregnant  = "pregnant"
	HeatFarrowing = "farrowing"
	HeatWeaning   = "weaning"
)

// Inputs carries everything one computation needs, already read from the
// record store. Status record slices must be sorted by timestamp descending,
// id ascending; LatestTemperatures must be the most recent N readings where N
// is the device count.
type Inputs struct {
	Devices            []store.Device
	Pigs               []store.Pig
	Barns              []store.Barn
	Stalls             []store.Stall
	FarmCount          int
	LatestTemperatures []store.TemperatureRecord
	BCSRecords         []store.BCSRecord
	PostureRecords     []store.PostureRecord
	HealthRecords      []store.HealthStatusRecord
	FertilityRecords   []store.FertilityStatusRecord
	HeatRecords        []store.HeatStatusRecord
}

// NormalizeStatus folds a raw status string onto its canonical category key:
// trimmed, lowercased, with every run of whitespace or hyphens collapsed to a
// single hyphen. "Pre-Heat" and "pre heat" both become "pre-heat".
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), "-")
}

// Compute derives a full Snapshot from the given inputs. It is pure: no I/O,
// no mutation of the inputs, deterministic for identical inputs.
func Compute(in Inputs) Snapshot {
	return Snapshot{
		DeviceStats:         computeDeviceStats(in.Devices, in.LatestTemperatures),
		BCSStats:            computeBCSStats(in.BCSRecords),
		PostureDistribution: computePostureDistribution(in.PostureRecords),
		PigStats:            computePigStats(in.Pigs),
		PigHealthStats:      computeHealthStats(in.HealthRecords),
		PigFertilityStats:   computeFertilityStats(in.FertilityRecords),
		PigHeatStats:        computeHeatStats(in.HeatRecords),
		BarnStats:           computeBarnStats(in.Pigs, in.Barns),
		StallStats:          computeStallStats(in.Pigs, in.Barns, in.Stalls),
		FarmBarnStallStats: LocationTotals{
			TotalFarms:  in.FarmCount,
			TotalBarns:  len(in.Barns),
			TotalStalls: len(in.Stalls),
		},
	}
}

func computeDeviceStats(devices []store.Device, latest []store.TemperatureRecord) DeviceStats {
	online := 0
	tempSum := 0.0
	for _, d := range devices {
		if d.Status == store.DeviceStatusOnline {
			online++
		}
		tempSum += d.Temperature
	}

	usage := 0
	avgDeviceTemp := 0.0
	if len(devices) > 0 {
		usage = int(math.Round(float64(online) / float64(len(devices)) * 100))
		avgDeviceTemp = tempSum / float64(len(devices))
	}

	avgLatest := 0.0
	if len(latest) > 0 {
		sum := 0.0
		for _, r := range latest {
			sum += r.Temperature
		}
		avgLatest = sum / float64(len(latest))
	}

	return DeviceStats{
		OnlineDevices:          online,
		TotalDevices:           len(devices),
		DeviceUsage:            usage,
		AverageTemperature:     round1(avgDeviceTemp),
		LatestTemperatureStats: round1(avgLatest),
	}
}

func computeBCSStats(records []store.BCSRecord) BCSStats {
	if len(records) == 0 {
		return BCSStats{}
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Score
	}
	return BCSStats{AverageBCS: round1(sum / float64(len(records)))}
}

func computePostureDistribution(records []store.PostureRecord) []PostureBucket {
	counts := make(map[int]int)
	for _, r := range records {
		counts[r.Score]++
	}

	buckets := make([]PostureBucket, 0, len(counts))
	for score, count := range counts {
		pct := 0
		if len(records) > 0 {
			pct = int(math.Round(float64(count) / float64(len(records)) * 100))
		}
		buckets = append(buckets, PostureBucket{Score: score, Count: count, Percentage: pct})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Score < buckets[j].Score })
	return buckets
}

func computePigStats(pigs []store.Pig) PigStats {
	if len(pigs) == 0 {
		return PigStats{}
	}
	ageSum := 0
	for _, p := range pigs {
		ageSum += p.Age
	}
	return PigStats{
		TotalPigs:  len(pigs),
		AverageAge: round1(float64(ageSum) / float64(len(pigs))),
	}
}

// statusObservation is the common shape of all per-pig categorical records.
type statusObservation struct {
	timestamp time.Time
	status    string
	pigID     int64
}

// countLatestStatus resolves each pig's most recent status and counts pigs per
// normalized category. Input must be sorted by timestamp descending, id
// ascending; among records sharing a pig's maximum timestamp, the one
// encountered last wins.
func countLatestStatus(observations []statusObservation) map[string]int {
	type latest struct {
		timestamp time.Time
		status    string
	}
	byPig := make(map[int64]latest)
	for _, o := range observations {
		cur, ok := byPig[o.pigID]
		if !ok || o.timestamp.Equal(cur.timestamp) {
			byPig[o.pigID] = latest{timestamp: o.timestamp, status: o.status}
		}
	}

	counts := make(map[string]int)
	for _, l := range byPig {
		counts[NormalizeStatus(l.status)]++
	}
	return counts
}

func computeHealthStats(records []store.HealthStatusRecord) HealthStats {
	counts := countLatestStatus(healthObservations(records))
	return HealthStats{
		TotalAtRisk:     counts[HealthAtRisk],
		TotalHealthy:    counts[HealthHealthy],
		TotalCritical:   counts[HealthCritical],
		TotalNoMovement: counts[HealthNoMovement],
	}
}

func computeFertilityStats(records []store.FertilityStatusRecord) FertilityStats {
	counts := countLatestStatus(fertilityObservations(records))
	return FertilityStats{
		InHeat:       counts[FertilityInHeat],
		PreHeat:      counts[FertilityPreHeat],
		Open:         counts[FertilityOpen],
		ReadyToBreed: counts[FertilityReadyToBreed],
	}
}

func computeHeatStats(records []store.HeatStatusRecord) HeatStats {
	counts := countLatestStatus(heatObservations(records))
	return HeatStats{
		TotalOpen:      counts[HeatOpen],
		TotalBred:      counts[HeatBred],
		TotalPregnant:  counts[HeatPregnant],
		TotalFarrowing: counts[HeatFarrowing],
		TotalWeaning:   counts[HeatWeaning],
	}
}

// computeBarnStats counts pigs per barn display name. Pigs whose barn ref does
// not resolve are excluded from the rollup but still count in global totals.
func computeBarnStats(pigs []store.Pig, barns []store.Barn) map[string]int {
	barnNames := make(map[uint]string, len(barns))
	result := make(map[string]int, len(barns))
	for _, b := range barns {
		barnNames[b.ID] = b.Name
		result[b.Name] = 0
	}

	for _, p := range pigs {
		if name, ok := barnNames[p.CurrentBarnID]; ok {
			result[name]++
		}
	}
	return result
}

// computeStallStats counts pigs per stall display name, nested under the
// owning barn's display name.
func computeStallStats(pigs []store.Pig, barns []store.Barn, stalls []store.Stall) StallCountsByBarn {
	barnNames := make(map[uint]string, len(barns))
	for _, b := range barns {
		barnNames[b.ID] = b.Name
	}

	type stallKey struct {
		barn  string
		stall string
	}
	stallNames := make(map[uint]stallKey, len(stalls))
	result := make(StallCountsByBarn)
	for _, s := range stalls {
		barnName, ok := barnNames[s.BarnID]
		if !ok {
			continue
		}
		stallNames[s.ID] = stallKey{barn: barnName, stall: s.Name}
		if result[barnName] == nil {
			result[barnName] = make(map[string]int)
		}
		result[barnName][s.Name] = 0
	}

	for _, p := range pigs {
		if key, ok := stallNames[p.CurrentStallID]; ok {
			result[key.barn][key.stall]++
		}
	}
	return result
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
