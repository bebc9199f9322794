package stats

import (
	"fmt"
	"hash/fnv"
	"time"

	"farmsight.dev/farmsight/internal/store"
)

// Table row shapes pushed alongside the Snapshot for the device and herd
// table views.

// DeviceRow is the table view of one device.
type DeviceRow struct {
	ID            int64  `json:"id"`
	Created       string `json:"created"`
	DeviceName    string `json:"deviceName"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	LastDataPoint string `json:"lastDataPoint"`
}

// PigRow is the table view of one pig.
type PigRow struct {
	Owner           string `json:"owner"`
	Status          string `json:"status"`
	Costs           int    `json:"costs"`
	Region          string `json:"region"`
	Stability       int    `json:"stability"`
	LastEdited      string `json:"lastEdited"`
	Breed           string `json:"breed"`
	HealthStatus    string `json:"healthStatus"`
	FertilityStatus string `json:"fertilityStatus"`
	HeatStatus      string `json:"heatStatus"`
}

const lastEditedLayout = "02/01/2006, 15:04"

// TransformDevices builds the device table rows. Missing timestamps fall back
// to now so the table never shows a zero time.
func TransformDevices(devices []store.Device, now time.Time) []DeviceRow {
	rows := make([]DeviceRow, len(devices))
	for i, d := range devices {
		created := d.CreatedAt
		if created.IsZero() {
			created = now
		}
		lastDataPoint := d.LastUpdate
		if lastDataPoint.IsZero() {
			lastDataPoint = now
		}

		priority := "high"
		switch d.Status {
		case store.DeviceStatusOnline:
			priority = "low"
		case store.DeviceStatusWarning:
			priority = "medium"
		}

		rows[i] = DeviceRow{
			ID:            d.DeviceID,
			Created:       created.Format(time.RFC3339),
			DeviceName:    d.Name,
			Type:          d.Type,
			Status:        d.Status,
			Priority:      priority,
			LastDataPoint: lastDataPoint.Format(time.RFC3339),
		}
	}
	return rows
}

// TransformPigs builds the herd table rows, joining in each pig's latest
// health, fertility and heat status and its stall display name.
func TransformPigs(in Inputs, now time.Time) []PigRow {
	stallNames := make(map[uint]string, len(in.Stalls))
	for _, s := range in.Stalls {
		stallNames[s.ID] = s.Name
	}

	health := latestRawStatus(healthObservations(in.HealthRecords))
	fertility := latestRawStatus(fertilityObservations(in.FertilityRecords))
	heat := latestRawStatus(heatObservations(in.HeatRecords))

	rows := make([]PigRow, len(in.Pigs))
	for i, p := range in.Pigs {
		status := "suspicious"
		switch {
		case p.BCSScore >= 4:
			status = "critical"
		case p.BCSScore >= 3:
			status = "healthy"
		}

		lastEdited := p.LastUpdate
		if lastEdited.IsZero() {
			lastEdited = now
		}

		rows[i] = PigRow{
			Owner:           fmt.Sprintf("PIG-%03d", p.PigID),
			Status:          status,
			Costs:           p.Age,
			Region:          stallNames[p.CurrentStallID],
			Stability:       pigStability(p.PigID),
			LastEdited:      lastEdited.Format(lastEditedLayout),
			Breed:           p.Breed,
			HealthStatus:    health[p.PigID],
			FertilityStatus: fertility[p.PigID],
			HeatStatus:      heat[p.PigID],
		}
	}
	return rows
}

// pigStability is a deterministic stand-in for a real health-risk score: a
// stable hash of the pig id mapped to 0..99. It exists only so repeated runs
// with no writes broadcast identical rows.
func pigStability(pigID int64) int {
	h := fnv.New32a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(pigID >> (8 * i))
	}
	h.Write(buf[:])
	return int(h.Sum32() % 100)
}

// latestRawStatus resolves each pig's most recent status string without
// normalization. Input must be sorted by timestamp descending, id ascending.
func latestRawStatus(observations []statusObservation) map[int64]string {
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

	result := make(map[int64]string, len(byPig))
	for pigID, l := range byPig {
		result[pigID] = l.status
	}
	return result
}

func healthObservations(records []store.HealthStatusRecord) []statusObservation {
	observations := make([]statusObservation, len(records))
	for i, r := range records {
		observations[i] = statusObservation{pigID: r.PigID, status: r.Status, timestamp: r.Timestamp}
	}
	return observations
}

func fertilityObservations(records []store.FertilityStatusRecord) []statusObservation {
	observations := make([]statusObservation, len(records))
	for i, r := range records {
		observations[i] = statusObservation{pigID: r.PigID, status: r.Status, timestamp: r.Timestamp}
	}
	return observations
}

func heatObservations(records []store.HeatStatusRecord) []statusObservation {
	observations := make([]statusObservation, len(records))
	for i, r := range records {
		observations[i] = statusObservation{pigID: r.PigID, status: r.Status, timestamp: r.Timestamp}
	}
	return observations
}
