package pipeline

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"farmsight.dev/farmsight/internal/ingest"
	"farmsight.dev/farmsight/internal/stats"
)

var _ = Describe("Queue Ingestion E2E", func() {
	publish := func(msg ingest.ObservationMessage) {
		data, err := json.Marshal(msg)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		Expect(mqClient.Push(ctx, data)).To(Succeed())
	}

	It("should mark a device online after a temperature observation", func() {
		publish(ingest.ObservationMessage{
			Timestamp: time.Now(),
			Type:      ingest.TypeTemperature,
			DeviceID:  1,
			Value:     22.5,
		})

		Eventually(func() (int, error) {
			var snapshot stats.Snapshot
			err := getJSON("/api/stats", &snapshot)
			return snapshot.DeviceStats.OnlineDevices, err
		}, 15*time.Second, time.Second).Should(BeNumerically(">=", 1))
	})

	It("should reclassify a pig when a fresh fertility status arrives", func() {
		var before stats.Snapshot
		Expect(getJSON("/api/stats", &before)).To(Succeed())

		// A brand-new observation outranks every seeded record for pig 2.
		publish(ingest.ObservationMessage{
			Timestamp: time.Now(),
			Type:      ingest.TypeFertilityStatus,
			PigID:     2,
			Status:    "Pre-Heat",
		})

		Eventually(func() (int, error) {
			var snapshot stats.Snapshot
			err := getJSON("/api/stats", &snapshot)
			return snapshot.PigFertilityStats.PreHeat, err
		}, 15*time.Second, time.Second).Should(BeNumerically(">=", 1))
	})

	It("should fold messy status casing into one category", func() {
		publish(ingest.ObservationMessage{
			Timestamp: time.Now(),
			Type:      ingest.TypeHealthStatus,
			PigID:     3,
			Status:    "  No   Movement ",
		})

		Eventually(func() (int, error) {
			var snapshot stats.Snapshot
			err := getJSON("/api/stats", &snapshot)
			return snapshot.PigHealthStats.TotalNoMovement, err
		}, 15*time.Second, time.Second).Should(BeNumerically(">=", 1))
	})

	It("should survive a malformed message without stalling the queue", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		Expect(mqClient.Push(ctx, []byte("this is not json"))).To(Succeed())

		// A valid message published afterwards still lands.
		publish(ingest.ObservationMessage{
			Timestamp: time.Now(),
			Type:      ingest.TypeHeatStatus,
			PigID:     4,
			Status:    "pregnant",
		})

		Eventually(func() (int, error) {
			var snapshot stats.Snapshot
			err := getJSON("/api/stats", &snapshot)
			return snapshot.PigHeatStats.TotalPregnant, err
		}, 15*time.Second, time.Second).Should(BeNumerically(">=", 1))
	})
})
