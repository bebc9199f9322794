package stats_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"farmsight.dev/farmsight/internal/stats"
	"farmsight.dev/farmsight/internal/store"
)

var _ = Describe("ComputePigSummary", func() {
	It("should average scores and ages to two decimals", func() {
		summary := stats.ComputePigSummary([]store.Pig{
			{PigID: 1, Breed: "Duroc", Age: 10, BCSScore: 3.0},
			{PigID: 2, Breed: "Duroc", Age: 11, BCSScore: 3.5},
			{PigID: 3, Breed: "Yorkshire", Age: 14, BCSScore: 2.5},
		})

		Expect(summary.TotalPigs).To(Equal(3))
		Expect(summary.AvgBCS).To(Equal(3.0))
		Expect(summary.AvgAge).To(Equal(11.67))
	})

	It("should distribute breeds with rounded percentages", func() {
		summary := stats.ComputePigSummary([]store.Pig{
			{PigID: 1, Breed: "Duroc"},
			{PigID: 2, Breed: "Duroc"},
			{PigID: 3, Breed: "Yorkshire"},
		})

		Expect(summary.BreedDistribution).To(Equal([]stats.BreedBucket{
			{Breed: "Duroc", Count: 2, Percentage: 66.67},
			{Breed: "Yorkshire", Count: 1, Percentage: 33.33},
		}))
	})

	It("should order breeds deterministically", func() {
		summary := stats.ComputePigSummary([]store.Pig{
			{PigID: 1, Breed: "Pietrain"},
			{PigID: 2, Breed: "Berkshire"},
			{PigID: 3, Breed: "Landrace"},
		})

		Expect(summary.BreedDistribution[0].Breed).To(Equal("Berkshire"))
		Expect(summary.BreedDistribution[1].Breed).To(Equal("Landrace"))
		Expect(summary.BreedDistribution[2].Breed).To(Equal("Pietrain"))
	})

	It("should return zeros and an empty distribution for an empty roster", func() {
		summary := stats.ComputePigSummary(nil)

		Expect(summary.TotalPigs).To(BeZero())
		Expect(summary.AvgBCS).To(BeZero())
		Expect(summary.AvgAge).To(BeZero())
		Expect(summary.BreedDistribution).To(BeEmpty())
		Expect(summary.BreedDistribution).NotTo(BeNil())
	})
})

var _ = Describe("ComputeDeviceSummary", func() {
	It("should count each status and average temperatures", func() {
		summary := stats.ComputeDeviceSummary([]store.Device{
			{DeviceID: 1, Status: store.DeviceStatusOnline, Temperature: 21.0},
			{DeviceID: 2, Status: store.DeviceStatusOnline, Temperature: 23.0},
			{DeviceID: 3, Status: store.DeviceStatusOffline, Temperature: 19.0},
			{DeviceID: 4, Status: store.DeviceStatusWarning, Temperature: 25.0},
		})

		Expect(summary.TotalDevices).To(Equal(4))
		Expect(summary.OnlineCount).To(Equal(2))
		Expect(summary.OfflineCount).To(Equal(1))
		Expect(summary.WarningCount).To(Equal(1))
		Expect(summary.AvgTemperature).To(Equal(22.0))
	})

	It("should round the average to two decimals", func() {
		summary := stats.ComputeDeviceSummary([]store.Device{
			{DeviceID: 1, Status: store.DeviceStatusOnline, Temperature: 20.0},
			{DeviceID: 2, Status: store.DeviceStatusOnline, Temperature: 20.1},
			{DeviceID: 3, Status: store.DeviceStatusOnline, Temperature: 20.0},
		})

		Expect(summary.AvgTemperature).To(Equal(20.03))
	})

	It("should return zeros for an empty fleet", func() {
		summary := stats.ComputeDeviceSummary(nil)

		Expect(summary.TotalDevices).To(BeZero())
		Expect(summary.OnlineCount).To(BeZero())
		Expect(summary.AvgTemperature).To(BeZero())
	})

	It("should leave unknown statuses out of every counter", func() {
		summary := stats.ComputeDeviceSummary([]store.Device{
			{DeviceID: 1, Status: "rebooting", Temperature: 20.0},
		})

		Expect(summary.TotalDevices).To(Equal(1))
		Expect(summary.OnlineCount + summary.OfflineCount + summary.WarningCount).To(BeZero())
	})
})
