package stats_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"farmsight.dev/farmsight/internal/stats"
	"farmsight.dev/farmsight/internal/store"
)

var _ = Describe("Compute", func() {
	var base time.Time

	BeforeEach(func() {
		base = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	})

	Describe("device stats", func() {
		It("should round the online percentage", func() {
			snapshot := stats.Compute(stats.Inputs{
				Devices: []store.Device{
					{DeviceID: 1, Status: store.DeviceStatusOnline},
					{DeviceID: 2, Status: store.DeviceStatusOnline},
					{DeviceID: 3, Status: store.DeviceStatusOffline},
				},
			})

			Expect(snapshot.DeviceStats.OnlineDevices).To(Equal(2))
			Expect(snapshot.DeviceStats.TotalDevices).To(Equal(3))
			Expect(snapshot.DeviceStats.DeviceUsage).To(Equal(67))
		})

		It("should report zero usage for zero devices", func() {
			snapshot := stats.Compute(stats.Inputs{})

			Expect(snapshot.DeviceStats.TotalDevices).To(Equal(0))
			Expect(snapshot.DeviceStats.DeviceUsage).To(Equal(0))
			Expect(snapshot.DeviceStats.AverageTemperature).To(Equal(0.0))
			Expect(snapshot.DeviceStats.LatestTemperatureStats).To(Equal(0.0))
		})

		It("should average stored and latest temperatures separately", func() {
			snapshot := stats.Compute(stats.Inputs{
				Devices: []store.Device{
					{DeviceID: 1, Status: store.DeviceStatusOnline, Temperature: 20.0},
					{DeviceID: 2, Status: store.DeviceStatusOffline, Temperature: 30.0},
				},
				LatestTemperatures: []store.TemperatureRecord{
					{DeviceID: 1, Temperature: 21.5, Timestamp: base},
					{DeviceID: 2, Temperature: 22.6, Timestamp: base},
				},
			})

			Expect(snapshot.DeviceStats.AverageTemperature).To(Equal(25.0))
			Expect(snapshot.DeviceStats.LatestTemperatureStats).To(BeNumerically("~", 22.1, 0.001))
		})

		It("should not count warning devices as online", func() {
			snapshot := stats.Compute(stats.Inputs{
				Devices: []store.Device{
					{DeviceID: 1, Status: store.DeviceStatusWarning},
					{DeviceID: 2, Status: store.DeviceStatusOnline},
				},
			})

			Expect(snapshot.DeviceStats.OnlineDevices).To(Equal(1))
			Expect(snapshot.DeviceStats.DeviceUsage).To(Equal(50))
		})
	})

	Describe("bcs stats", func() {
		It("should average all historical scores", func() {
			snapshot := stats.Compute(stats.Inputs{
				BCSRecords: []store.BCSRecord{
					{PigID: 1, Score: 3.0, Timestamp: base},
					{PigID: 1, Score: 4.0, Timestamp: base.Add(time.Hour)},
					{PigID: 2, Score: 2.0, Timestamp: base},
				},
			})

			Expect(snapshot.BCSStats.AverageBCS).To(Equal(3.0))
		})

		It("should report zero for no records", func() {
			Expect(stats.Compute(stats.Inputs{}).BCSStats.AverageBCS).To(Equal(0.0))
		})
	})

	Describe("posture distribution", func() {
		It("should count and percentage each distinct score", func() {
			snapshot := stats.Compute(stats.Inputs{
				PostureRecords: []store.PostureRecord{
					{PigID: 1, Score: 2, Timestamp: base},
					{PigID: 2, Score: 2, Timestamp: base},
					{PigID: 3, Score: 5, Timestamp: base},
				},
			})

			Expect(snapshot.PostureDistribution).To(HaveLen(2))
			Expect(snapshot.PostureDistribution[0].Score).To(Equal(2))
			Expect(snapshot.PostureDistribution[0].Count).To(Equal(2))
			Expect(snapshot.PostureDistribution[0].Percentage).To(Equal(67))
			Expect(snapshot.PostureDistribution[1].Score).To(Equal(5))
			Expect(snapshot.PostureDistribution[1].Percentage).To(Equal(33))
		})

		It("should be empty for no records", func() {
			Expect(stats.Compute(stats.Inputs{}).PostureDistribution).To(BeEmpty())
		})
	})

	Describe("pig stats", func() {
		It("should average age to one decimal", func() {
			snapshot := stats.Compute(stats.Inputs{
				Pigs: []store.Pig{
					{PigID: 1, Age: 10},
					{PigID: 2, Age: 11},
					{PigID: 3, Age: 14},
				},
			})

			Expect(snapshot.PigStats.TotalPigs).To(Equal(3))
			Expect(snapshot.PigStats.AverageAge).To(BeNumerically("~", 11.7, 0.001))
		})

		It("should report zero average for an empty herd", func() {
			snapshot := stats.Compute(stats.Inputs{})
			Expect(snapshot.PigStats.TotalPigs).To(Equal(0))
			Expect(snapshot.PigStats.AverageAge).To(Equal(0.0))
		})
	})

	Describe("latest-per-pig status resolution", func() {
		It("should count each pig once under its most recent status", func() {
			snapshot := stats.Compute(stats.Inputs{
				HealthRecords: []store.HealthStatusRecord{
					// Sorted by timestamp descending, as the source delivers.
					{PigID: 1, Status: "critical", Timestamp: base.Add(5 * time.Minute)},
					{PigID: 1, Status: "healthy", Timestamp: base},
				},
			})

			Expect(snapshot.PigHealthStats.TotalCritical).To(Equal(1))
			Expect(snapshot.PigHealthStats.TotalHealthy).To(Equal(0))
		})

		It("should resolve equal timestamps to the record encountered last", func() {
			snapshot := stats.Compute(stats.Inputs{
				HealthRecords: []store.HealthStatusRecord{
					{PigID: 1, Status: "healthy", Timestamp: base},
					{PigID: 1, Status: "at risk", Timestamp: base},
				},
			})

			Expect(snapshot.PigHealthStats.TotalAtRisk).To(Equal(1))
			Expect(snapshot.PigHealthStats.TotalHealthy).To(Equal(0))
		})

		It("should always report every category", func() {
			snapshot := stats.Compute(stats.Inputs{})

			Expect(snapshot.PigHealthStats).To(Equal(stats.HealthStats{}))
			Expect(snapshot.PigFertilityStats).To(Equal(stats.FertilityStats{}))
			Expect(snapshot.PigHeatStats).To(Equal(stats.HeatStats{}))
		})
	})

	Describe("status normalization", func() {
		It("should fold casing and separator variants into one bucket", func() {
			snapshot := stats.Compute(stats.Inputs{
				FertilityRecords: []store.FertilityStatusRecord{
					{PigID: 1, Status: "Pre-Heat", Timestamp: base},
					{PigID: 2, Status: "pre heat", Timestamp: base},
					{PigID: 3, Status: "PRE  HEAT", Timestamp: base},
				},
			})

			Expect(snapshot.PigFertilityStats.PreHeat).To(Equal(3))
		})

		It("should normalize heat statuses the same way", func() {
			snapshot := stats.Compute(stats.Inputs{
				HeatRecords: []store.HeatStatusRecord{
					{PigID: 1, Status: " Pregnant ", Timestamp: base},
					{PigID: 2, Status: "pregnant", Timestamp: base},
				},
			})

			Expect(snapshot.PigHeatStats.TotalPregnant).To(Equal(2))
		})
	})

	Describe("NormalizeStatus", func() {
		It("should trim, lowercase and hyphenate", func() {
			Expect(stats.NormalizeStatus(" Ready To Breed ")).To(Equal("ready-to-breed"))
			Expect(stats.NormalizeStatus("ready-to-breed")).To(Equal("ready-to-breed"))
			Expect(stats.NormalizeStatus("No   Movement")).To(Equal("no-movement"))
			Expect(stats.NormalizeStatus("")).To(Equal(""))
		})
	})

	Describe("location rollups", func() {
		var in stats.Inputs

		BeforeEach(func() {
			in = stats.Inputs{
				FarmCount: 1,
				Barns: []store.Barn{
					{ID: 1, Name: "Barn A", FarmID: 1},
					{ID: 2, Name: "Barn B", FarmID: 1},
				},
				Stalls: []store.Stall{
					{ID: 10, Name: "Stall 1", BarnID: 1, FarmID: 1},
					{ID: 11, Name: "Stall 2", BarnID: 1, FarmID: 1},
					{ID: 20, Name: "Stall 1", BarnID: 2, FarmID: 1},
				},
				Pigs: []store.Pig{
					{PigID: 1, CurrentBarnID: 1, CurrentStallID: 10},
					{PigID: 2, CurrentBarnID: 1, CurrentStallID: 10},
					{PigID: 3, CurrentBarnID: 2, CurrentStallID: 20},
				},
			}
		})

		It("should count pigs per barn and per stall", func() {
			snapshot := stats.Compute(in)

			Expect(snapshot.BarnStats).To(Equal(map[string]int{"Barn A": 2, "Barn B": 1}))
			Expect(snapshot.StallStats["Barn A"]).To(Equal(map[string]int{"Stall 1": 2, "Stall 2": 0}))
			Expect(snapshot.StallStats["Barn B"]).To(Equal(map[string]int{"Stall 1": 1}))
			Expect(snapshot.FarmBarnStallStats).To(Equal(stats.LocationTotals{
				TotalFarms:  1,
				TotalBarns:  2,
				TotalStalls: 3,
			}))
		})

		It("should exclude pigs with unresolvable refs from rollups but not totals", func() {
			in.Pigs = append(in.Pigs, store.Pig{PigID: 4, CurrentBarnID: 99, CurrentStallID: 99})
			snapshot := stats.Compute(in)

			Expect(snapshot.PigStats.TotalPigs).To(Equal(4))
			Expect(snapshot.BarnStats["Barn A"] + snapshot.BarnStats["Barn B"]).To(Equal(3))
		})
	})

	Describe("idempotence", func() {
		It("should produce identical snapshots for identical inputs", func() {
			in := stats.Inputs{
				Devices: []store.Device{{DeviceID: 1, Status: store.DeviceStatusOnline, Temperature: 21.0}},
				Pigs:    []store.Pig{{PigID: 1, Age: 12}},
				HealthRecords: []store.HealthStatusRecord{
					{PigID: 1, Status: "healthy", Timestamp: base},
				},
			}

			Expect(stats.Compute(in)).To(Equal(stats.Compute(in)))
		})
	})
})
