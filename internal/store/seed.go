package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"
)

// SeedConfig controls how much synthetic data Seed writes.
type SeedConfig struct {
	Farms              int
	BarnsPerFarm       int
	StallsPerBarn      int
	Devices            int
	Pigs               int
	ObservationsPerPig int
}

// DefaultSeedConfig returns the seed sizing used by the demo environment.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Farms:              2,
		BarnsPerFarm:       2,
		StallsPerBarn:      5,
		Devices:            40,
		Pigs:               40,
		ObservationsPerPig: 10,
	}
}

var (
	pigBreeds = []string{"Yorkshire", "Landrace", "Duroc", "Hampshire", "Berkshire", "Pietrain"}

	deviceStatuses = []string{DeviceStatusOnline, DeviceStatusOffline, DeviceStatusWarning}

	// Status pools deliberately mix casing and separators the way upstream
	// systems deliver them. Aggregation folds them into canonical form.
	healthStatuses    = []string{"at risk", "At Risk", "healthy", "Healthy", "critical", "no movement", "No Movement"}
	fertilityStatuses = []string{"in-heat", "In Heat", "pre-heat", "Pre-Heat", "open", "Open", "ready-to-breed", "Ready To Breed"}
	heatStatuses      = []string{"open", "bred", "Bred", "pregnant", "Pregnant", "farrowing", "weaning"}
	swellingLevels    = []string{"low", "moderate", "high"}
)

// Seed populates the database with a synthetic herd, its housing and a short
// observation history per animal. It is idempotent in the weak sense only:
// running it twice doubles the herd.
func Seed(db *gorm.DB, config SeedConfig, l *slog.Logger) error {
	faker := gofakeit.New(0)
	now := time.Now()

	var stalls []Stall
	for f := 0; f < config.Farms; f++ {
		farm := Farm{
			Name:     fmt.Sprintf("%s Farm", faker.LastName()),
			Location: fmt.Sprintf("%s, %s", faker.City(), faker.StateAbr()),
		}
		if err := db.Create(&farm).Error; err != nil {
			return fmt.Errorf("failed to seed farm: %w", err)
		}

		for b := 0; b < config.BarnsPerFarm; b++ {
			barn := Barn{
				Name:   fmt.Sprintf("Barn %c", 'A'+b),
				FarmID: farm.ID,
			}
			if err := db.Create(&barn).Error; err != nil {
				return fmt.Errorf("failed to seed barn: %w", err)
			}

			for s := 0; s < config.StallsPerBarn; s++ {
				stall := Stall{
					Name:   fmt.Sprintf("Stall %d", s+1),
					BarnID: barn.ID,
					FarmID: farm.ID,
				}
				if err := db.Create(&stall).Error; err != nil {
					return fmt.Errorf("failed to seed stall: %w", err)
				}
				stalls = append(stalls, stall)
			}
		}
	}

	for d := 0; d < config.Devices; d++ {
		device := Device{
			DeviceID:    int64(d + 1),
			Name:        fmt.Sprintf("TempSensor-%03d", d+1),
			Type:        "Temperature",
			Status:      deviceStatuses[faker.Number(0, len(deviceStatuses)-1)],
			Temperature: faker.Float64Range(18.0, 42.0),
			LastUpdate:  now.Add(-time.Duration(faker.Number(0, 3600)) * time.Second),
		}
		if err := db.Create(&device).Error; err != nil {
			return fmt.Errorf("failed to seed device: %w", err)
		}

		for i := 0; i < config.ObservationsPerPig; i++ {
			record := TemperatureRecord{
				DeviceID:    device.DeviceID,
				Temperature: faker.Float64Range(18.0, 42.0),
				Timestamp:   now.Add(-time.Duration(i) * time.Hour),
			}
			if err := db.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to seed temperature record: %w", err)
			}
		}
	}

	for p := 0; p < config.Pigs; p++ {
		stall := stalls[faker.Number(0, len(stalls)-1)]
		pig := Pig{
			PigID:          int64(p + 1),
			Tag:            fmt.Sprintf("%s-%04d", faker.LetterN(2), p+1),
			Breed:          pigBreeds[faker.Number(0, len(pigBreeds)-1)],
			Age:            faker.Number(1, 60),
			BCSScore:       faker.Float64Range(1.0, 5.0),
			CurrentFarmID:  stall.FarmID,
			CurrentBarnID:  stall.BarnID,
			CurrentStallID: stall.ID,
			Active:         true,
			LastUpdate:     now.Add(-time.Duration(faker.Number(0, 86400)) * time.Second),
		}
		if err := db.Create(&pig).Error; err != nil {
			return fmt.Errorf("failed to seed pig: %w", err)
		}

		if err := seedObservations(db, faker, pig.PigID, config.ObservationsPerPig, now); err != nil {
			return err
		}
	}

	l.Info("database seeded",
		"farms", config.Farms,
		"stalls", len(stalls),
		"devices", config.Devices,
		"pigs", config.Pigs)
	return nil
}

func seedObservations(db *gorm.DB, faker *gofakeit.Faker, pigID int64, count int, now time.Time) error {
	for i := 0; i < count; i++ {
		// Spread history over the last 30 days so time-series buckets fill.
		ts := now.Add(-time.Duration(faker.Number(0, 30*24)) * time.Hour)

		bcs := BCSRecord{PigID: pigID, Score: faker.Float64Range(1.0, 5.0), Timestamp: ts}
		if err := db.Create(&bcs).Error; err != nil {
			return fmt.Errorf("failed to seed bcs record: %w", err)
		}

		posture := PostureRecord{PigID: pigID, Score: faker.Number(1, 5), Timestamp: ts}
		if err := db.Create(&posture).Error; err != nil {
			return fmt.Errorf("failed to seed posture record: %w", err)
		}

		health := HealthStatusRecord{
			PigID:     pigID,
			Status:    healthStatuses[faker.Number(0, len(healthStatuses)-1)],
			Timestamp: ts,
		}
		if err := db.Create(&health).Error; err != nil {
			return fmt.Errorf("failed to seed health status record: %w", err)
		}

		fertility := FertilityStatusRecord{
			PigID:     pigID,
			Status:    fertilityStatuses[faker.Number(0, len(fertilityStatuses)-1)],
			Timestamp: ts,
		}
		if err := db.Create(&fertility).Error; err != nil {
			return fmt.Errorf("failed to seed fertility status record: %w", err)
		}

		heat := HeatStatusRecord{
			PigID:     pigID,
			Status:    heatStatuses[faker.Number(0, len(heatStatuses)-1)],
			Timestamp: ts,
		}
		if err := db.Create(&heat).Error; err != nil {
			return fmt.Errorf("failed to seed heat status record: %w", err)
		}

		breath := BreathRateRecord{PigID: pigID, Rate: faker.Float64Range(10.0, 40.0), Timestamp: ts}
		if err := db.Create(&breath).Error; err != nil {
			return fmt.Errorf("failed to seed breath rate record: %w", err)
		}

		swelling := VulvaSwellingRecord{
			PigID:     pigID,
			Value:     swellingLevels[faker.Number(0, len(swellingLevels)-1)],
			Timestamp: ts,
		}
		if err := db.Create(&swelling).Error; err != nil {
			return fmt.Errorf("failed to seed vulva swelling record: %w", err)
		}
	}
	return nil
}
