package stats_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"farmsight.dev/farmsight/internal/stats"
	"farmsight.dev/farmsight/internal/store"
)

var _ = Describe("Transforms", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	})

	Describe("TransformDevices", func() {
		It("should derive priority from status", func() {
			rows := stats.TransformDevices([]store.Device{
				{DeviceID: 1, Name: "TempSensor-001", Status: store.DeviceStatusOnline},
				{DeviceID: 2, Name: "TempSensor-002", Status: store.DeviceStatusWarning},
				{DeviceID: 3, Name: "TempSensor-003", Status: store.DeviceStatusOffline},
			}, now)

			Expect(rows[0].Priority).To(Equal("low"))
			Expect(rows[1].Priority).To(Equal("medium"))
			Expect(rows[2].Priority).To(Equal("high"))
		})

		It("should fall back to now for missing timestamps", func() {
			rows := stats.TransformDevices([]store.Device{{DeviceID: 1, Name: "TempSensor-001"}}, now)

			Expect(rows[0].Created).To(Equal(now.Format(time.RFC3339)))
			Expect(rows[0].LastDataPoint).To(Equal(now.Format(time.RFC3339)))
		})

		It("should keep stored timestamps", func() {
			created := now.Add(-48 * time.Hour)
			rows := stats.TransformDevices([]store.Device{
				{DeviceID: 1, Name: "TempSensor-001", CreatedAt: created, LastUpdate: now},
			}, now)

			Expect(rows[0].Created).To(Equal(created.Format(time.RFC3339)))
			Expect(rows[0].LastDataPoint).To(Equal(now.Format(time.RFC3339)))
		})
	})

	Describe("TransformPigs", func() {
		It("should format the display id zero-padded", func() {
			rows := stats.TransformPigs(stats.Inputs{
				Pigs: []store.Pig{{PigID: 7}, {PigID: 123}},
			}, now)

			Expect(rows[0].Owner).To(Equal("PIG-007"))
			Expect(rows[1].Owner).To(Equal("PIG-123"))
		})

		It("should bucket status from the body-condition score", func() {
			rows := stats.TransformPigs(stats.Inputs{
				Pigs: []store.Pig{
					{PigID: 1, BCSScore: 4.2},
					{PigID: 2, BCSScore: 3.0},
					{PigID: 3, BCSScore: 2.9},
				},
			}, now)

			Expect(rows[0].Status).To(Equal("critical"))
			Expect(rows[1].Status).To(Equal("healthy"))
			Expect(rows[2].Status).To(Equal("suspicious"))
		})

		It("should resolve the stall display name as region", func() {
			rows := stats.TransformPigs(stats.Inputs{
				Stalls: []store.Stall{{ID: 10, Name: "Stall 4", BarnID: 1, FarmID: 1}},
				Pigs:   []store.Pig{{PigID: 1, CurrentStallID: 10}, {PigID: 2, CurrentStallID: 99}},
			}, now)

			Expect(rows[0].Region).To(Equal("Stall 4"))
			Expect(rows[1].Region).To(Equal(""))
		})

		It("should join in each pig's latest statuses", func() {
			base := now.Add(-time.Hour)
			rows := stats.TransformPigs(stats.Inputs{
				Pigs: []store.Pig{{PigID: 1}},
				HealthRecords: []store.HealthStatusRecord{
					{PigID: 1, Status: "critical", Timestamp: base.Add(time.Minute)},
					{PigID: 1, Status: "healthy", Timestamp: base},
				},
				FertilityRecords: []store.FertilityStatusRecord{
					{PigID: 1, Status: "Pre-Heat", Timestamp: base},
				},
				HeatRecords: []store.HeatStatusRecord{
					{PigID: 1, Status: "bred", Timestamp: base},
				},
			}, now)

			Expect(rows[0].HealthStatus).To(Equal("critical"))
			Expect(rows[0].FertilityStatus).To(Equal("Pre-Heat"))
			Expect(rows[0].HeatStatus).To(Equal("bred"))
		})

		It("should format lastEdited in day-first order", func() {
			lastUpdate := time.Date(2026, 3, 9, 8, 5, 0, 0, time.UTC)
			rows := stats.TransformPigs(stats.Inputs{
				Pigs: []store.Pig{{PigID: 1, LastUpdate: lastUpdate}},
			}, now)

			Expect(rows[0].LastEdited).To(Equal("09/03/2026, 08:05"))
		})

		It("should keep the stability metric stable across runs", func() {
			in := stats.Inputs{Pigs: []store.Pig{{PigID: 1}, {PigID: 2}}}

			first := stats.TransformPigs(in, now)
			second := stats.TransformPigs(in, now)

			Expect(first[0].Stability).To(Equal(second[0].Stability))
			Expect(first[1].Stability).To(Equal(second[1].Stability))
			Expect(first[0].Stability).To(BeNumerically(">=", 0))
			Expect(first[0].Stability).To(BeNumerically("<", 100))
		})
	})
})
