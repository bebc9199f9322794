package stats

import (
	"context"
	"fmt"
	"time"

	"farmsight.dev/farmsight/internal/store"
)

// Time-series periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ErrInvalidPeriod is returned for a period outside {daily, weekly, monthly}.
var ErrInvalidPeriod = fmt.Errorf("period must be one of %q, %q, %q", PeriodDaily, PeriodWeekly, PeriodMonthly)

// TimeSeriesBucket is one calendar day of fertility and heat activity. Buckets
// are dense across the requested range; days without records are all-zero.
type TimeSeriesBucket struct {
	Date         string         `json:"date"`
	TotalPigs    int            `json:"totalPigs"`
	InHeat       int            `json:"inHeat"`
	ReadyToBreed int            `json:"readyToBreed"`
	Fertility    map[string]int `json:"fertility"`
	Heat         map[string]int `json:"heat"`
}

var (
	fertilityCategories = []string{FertilityInHeat, FertilityPreHeat, FertilityOpen, FertilityReadyToBreed}
	heatCategories      = []string{HeatOpen, HeatBred, HeatPregnant, HeatFarrowing, HeatWeaning}
)

// periodStart returns the first calendar day of the period's range.
func periodStart(period string, today time.Time) (time.Time, error) {
	switch period {
	case PeriodDaily:
		return today.AddDate(0, 0, -29), nil
	case PeriodWeekly:
		return today.AddDate(0, 0, -89), nil
	case PeriodMonthly:
		return today.AddDate(-1, 0, 0).AddDate(0, 0, 1), nil
	default:
		return time.Time{}, ErrInvalidPeriod
	}
}

// TimeSeries reads the period's records and builds one bucket per calendar
// day over the range ending today.
func (s *Source) TimeSeries(ctx context.Context, period string, now time.Time) ([]TimeSeriesBucket, error) {
	today := startOfDay(now)
	start, err := periodStart(period, today)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var fertility []store.FertilityStatusRecord
	if err := db.Where("timestamp >= ?", start).
		Order("timestamp DESC, id ASC").
		Find(&fertility).Error; err != nil {
		return nil, fmt.Errorf("failed to read fertility status records: %w", err)
	}

	var heat []store.HeatStatusRecord
	if err := db.Where("timestamp >= ?", start).
		Order("timestamp DESC, id ASC").
		Find(&heat).Error; err != nil {
		return nil, fmt.Errorf("failed to read heat status records: %w", err)
	}

	return BuildTimeSeries(fertility, heat, period, now)
}

// BuildTimeSeries bucketizes the given records into one dense bucket per
// calendar day of the period's range ending on now's day. A pig counts once
// per day under the category of its latest record within that day; totalPigs
// is the number of pigs with any fertility record that day. Days without
// records are all-zero, never absent.
func BuildTimeSeries(fertility []store.FertilityStatusRecord, heat []store.HeatStatusRecord, period string, now time.Time) ([]TimeSeriesBucket, error) {
	today := startOfDay(now)
	start, err := periodStart(period, today)
	if err != nil {
		return nil, err
	}

	fertilityByDay := countLatestStatusPerDay(fertilityObservations(fertility))
	heatByDay := countLatestStatusPerDay(heatObservations(heat))

	days := int(today.Sub(start).Hours()/24) + 1
	buckets := make([]TimeSeriesBucket, 0, days)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")

		bucket := TimeSeriesBucket{
			Date:      key,
			Fertility: make(map[string]int, len(fertilityCategories)),
			Heat:      make(map[string]int, len(heatCategories)),
		}
		for _, c := range fertilityCategories {
			bucket.Fertility[c] = 0
		}
		for _, c := range heatCategories {
			bucket.Heat[c] = 0
		}

		for status, count := range fertilityByDay[key] {
			if _, ok := bucket.Fertility[status]; ok {
				bucket.Fertility[status] = count
				bucket.TotalPigs += count
			}
		}
		for status, count := range heatByDay[key] {
			if _, ok := bucket.Heat[status]; ok {
				bucket.Heat[status] = count
			}
		}

		bucket.InHeat = bucket.Fertility[FertilityInHeat]
		bucket.ReadyToBreed = bucket.Fertility[FertilityReadyToBreed]
		buckets = append(buckets, bucket)
	}

	return buckets, nil
}

// countLatestStatusPerDay resolves each pig's latest status within each
// calendar day, then counts pigs per normalized category per day. Input must
// be sorted by timestamp descending, id ascending.
func countLatestStatusPerDay(observations []statusObservation) map[string]map[string]int {
	type dayPig struct {
		day   string
		pigID int64
	}
	type latest struct {
		timestamp time.Time
		status    string
	}
	byDayPig := make(map[dayPig]latest)
	for _, o := range observations {
		key := dayPig{day: startOfDay(o.timestamp).Format("2006-01-02"), pigID: o.pigID}
		cur, ok := byDayPig[key]
		if !ok || o.timestamp.Equal(cur.timestamp) {
			byDayPig[key] = latest{timestamp: o.timestamp, status: o.status}
		}
	}

	result := make(map[string]map[string]int)
	for key, l := range byDayPig {
		if result[key.day] == nil {
			result[key.day] = make(map[string]int)
		}
		result[key.day][NormalizeStatus(l.status)]++
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
