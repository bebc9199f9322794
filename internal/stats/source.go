package stats

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"farmsight.dev/farmsight/internal/store"
)

// Source reads aggregation inputs from the record store. All reads are
// read-only; any failed sub-query fails the whole collection so a run never
// computes over partial state.
type Source struct {
	db *gorm.DB
}

// NewSource creates a Source backed by the given database handle.
func NewSource(db *gorm.DB) *Source {
	return &Source{db: db}
}

// Collect reads the full current state needed for one computation. Status
// records come back sorted by timestamp descending, id ascending, which is the
// ordering Compute requires for latest-per-pig resolution.
func (s *Source) Collect(ctx context.Context) (Inputs, error) {
	var in Inputs
	db := s.db.WithContext(ctx)

	if err := db.Find(&in.Devices).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read devices: %w", err)
	}
	if err := db.Where("active = ?", true).Find(&in.Pigs).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read pigs: %w", err)
	}
	if err := db.Find(&in.Barns).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read barns: %w", err)
	}
	if err := db.Find(&in.Stalls).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read stalls: %w", err)
	}

	var farmCount int64
	if err := db.Model(&store.Farm{}).Count(&farmCount).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to count farms: %w", err)
	}
	in.FarmCount = int(farmCount)

	// The most recent reading per device slot, approximated the same way the
	// dashboard always has: the N newest readings overall for N devices.
	if len(in.Devices) > 0 {
		if err := db.Order("timestamp DESC, id ASC").
			Limit(len(in.Devices)).
			Find(&in.LatestTemperatures).Error; err != nil {
			return Inputs{}, fmt.Errorf("failed to read temperature records: %w", err)
		}
	}

	if err := db.Find(&in.BCSRecords).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read bcs records: %w", err)
	}
	if err := db.Find(&in.PostureRecords).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read posture records: %w", err)
	}
	if err := db.Order("timestamp DESC, id ASC").Find(&in.HealthRecords).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read health status records: %w", err)
	}
	if err := db.Order("timestamp DESC, id ASC").Find(&in.FertilityRecords).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read fertility status records: %w", err)
	}
	if err := db.Order("timestamp DESC, id ASC").Find(&in.HeatRecords).Error; err != nil {
		return Inputs{}, fmt.Errorf("failed to read heat status records: %w", err)
	}

	return in, nil
}
