// Package generator produces synthetic herd and barn-climate observations for
// load and demo environments.
package generator

import (
	"math"
	"math/rand"
	"time"
)

// Status pools. Casing deliberately varies the way upstream systems deliver
// it; the aggregation side normalizes.
var (
	healthStatuses    = []string{"at risk", "At Risk", "healthy", "Healthy", "critical", "no movement", "No Movement"}
	fertilityStatuses = []string{"in-heat", "In Heat", "pre-heat", "Pre-Heat", "open", "Open", "ready-to-breed", "Ready To Breed"}
	heatStatuses      = []string{"open", "bred", "Bred", "pregnant", "Pregnant", "farrowing", "weaning"}
	swellingLevels    = []string{"low", "moderate", "high"}
)

// HerdGenerator generates correlated observation values for a fixed set of
// pigs and devices. Values drift plausibly between calls rather than jumping
// randomly.
// Note: Uses math/rand throughout, which is acceptable for simulation data.
type HerdGenerator struct {
	bcsByPig     map[int64]float64
	baselineTemp float64
	noise        float64
}

// NewHerdGenerator creates a generator with a randomized barn-climate baseline.
func NewHerdGenerator() *HerdGenerator {
	return &HerdGenerator{
		bcsByPig:     make(map[int64]float64),
		baselineTemp: 18.0 + rand.Float64()*8, // #nosec G404 - weak random is acceptable for test data generation
		noise:        rand.Float64() * 2,
	}
}

// Temperature generates a barn temperature with a daily pattern.
func (g *HerdGenerator) Temperature(t time.Time) float64 {
	hour := float64(t.Hour())

	// Daily cycle (peak around 2-3 PM)
	dailyCycle := 4 * math.Sin((hour-6)*math.Pi/12)

	noise := (rand.Float64() - 0.5) * g.noise

	// Occasional anomalies (5% chance)
	anomaly := 0.0
	if rand.Float64() < 0.05 {
		anomaly = (rand.Float64() - 0.5) * 12
	}

	return math.Round((g.baselineTemp+dailyCycle+noise+anomaly)*100) / 100
}

// BCS generates a body-condition score for the given pig. Scores random-walk
// around the pig's previous score so the herd trends rather than flickers.
func (g *HerdGenerator) BCS(pigID int64) float64 {
	score, ok := g.bcsByPig[pigID]
	if !ok {
		score = 2.0 + rand.Float64()*2
	}
	score += (rand.Float64() - 0.5) * 0.3
	score = math.Max(1.0, math.Min(5.0, score))
	g.bcsByPig[pigID] = score
	return math.Round(score*10) / 10
}

// Posture generates a posture score weighted toward the middle of the scale.
func (g *HerdGenerator) Posture() int {
	// Sum of two small dice gives a rough bell over 1..5.
	return 1 + rand.Intn(3) + rand.Intn(3)
}

// HealthStatus picks a health status, healthy-weighted.
func (g *HerdGenerator) HealthStatus() string {
	if rand.Float64() < 0.6 {
		return "healthy"
	}
	return healthStatuses[rand.Intn(len(healthStatuses))]
}

// FertilityStatus picks a fertility status.
func (g *HerdGenerator) FertilityStatus() string {
	return fertilityStatuses[rand.Intn(len(fertilityStatuses))]
}

// HeatStatus picks a heat status.
func (g *HerdGenerator) HeatStatus() string {
	return heatStatuses[rand.Intn(len(heatStatuses))]
}

// BreathRate generates a breaths-per-minute value.
func (g *HerdGenerator) BreathRate() float64 {
	return math.Round((15+rand.Float64()*20)*10) / 10
}

// VulvaSwelling picks a swelling level.
func (g *HerdGenerator) VulvaSwelling() string {
	return swellingLevels[rand.Intn(len(swellingLevels))]
}
