package hub_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"farmsight.dev/farmsight/internal/hub"
	"farmsight.dev/farmsight/internal/stats"
)

var _ = Describe("Hub", func() {
	var (
		logger *slog.Logger
		h      *hub.Hub
		ctx    context.Context
		cancel context.CancelFunc
		server *httptest.Server
	)

	dial := func() *websocket.Conn {
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).NotTo(HaveOccurred())
		if resp != nil {
			resp.Body.Close()
		}
		return conn
	}

	readEnvelope := func(conn *websocket.Conn) (string, json.RawMessage) {
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		_, payload, err := conn.ReadMessage()
		Expect(err).NotTo(HaveOccurred())

		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		Expect(json.Unmarshal(payload, &envelope)).To(Succeed())
		return envelope.Event, envelope.Data
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))

		h = hub.New(logger)
		ctx, cancel = context.WithCancel(context.Background())
		go h.Run(ctx)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hub.ServeWS(h, w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
		cancel()
	})

	It("should deliver a snapshot broadcast to a connected client", func() {
		conn := dial()
		defer conn.Close()

		// Registration races the broadcast; give the hub a beat.
		time.Sleep(50 * time.Millisecond)

		snapshot := stats.Snapshot{
			PigStats: stats.PigStats{TotalPigs: 3, AverageAge: 12.5},
		}
		h.BroadcastStats(snapshot)

		event, data := readEnvelope(conn)
		Expect(event).To(Equal(hub.EventStatsUpdate))

		var received stats.Snapshot
		Expect(json.Unmarshal(data, &received)).To(Succeed())
		Expect(received.PigStats.TotalPigs).To(Equal(3))
		Expect(received.PigStats.AverageAge).To(Equal(12.5))
	})

	It("should deliver the same broadcast to every client", func() {
		first := dial()
		defer first.Close()
		second := dial()
		defer second.Close()

		time.Sleep(50 * time.Millisecond)

		h.BroadcastDevices([]stats.DeviceRow{{ID: 1, DeviceName: "TempSensor-001"}})

		for _, conn := range []*websocket.Conn{first, second} {
			event, data := readEnvelope(conn)
			Expect(event).To(Equal(hub.EventDevicesUpdate))

			var rows []stats.DeviceRow
			Expect(json.Unmarshal(data, &rows)).To(Succeed())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].DeviceName).To(Equal("TempSensor-001"))
		}
	})

	It("should deliver events in broadcast order", func() {
		conn := dial()
		defer conn.Close()

		time.Sleep(50 * time.Millisecond)

		h.BroadcastStats(stats.Snapshot{})
		h.BroadcastDevices(nil)
		h.BroadcastPigs(nil)

		firstEvent, _ := readEnvelope(conn)
		secondEvent, _ := readEnvelope(conn)
		thirdEvent, _ := readEnvelope(conn)

		Expect(firstEvent).To(Equal(hub.EventStatsUpdate))
		Expect(secondEvent).To(Equal(hub.EventDevicesUpdate))
		Expect(thirdEvent).To(Equal(hub.EventPigsUpdate))
	})

	It("should keep broadcasting after a client disconnects", func() {
		gone := dial()
		staying := dial()
		defer staying.Close()

		time.Sleep(50 * time.Millisecond)
		gone.Close()
		time.Sleep(50 * time.Millisecond)

		h.BroadcastPigs([]stats.PigRow{{Owner: "PIG-001"}})

		event, data := readEnvelope(staying)
		Expect(event).To(Equal(hub.EventPigsUpdate))

		var rows []stats.PigRow
		Expect(json.Unmarshal(data, &rows)).To(Succeed())
		Expect(rows[0].Owner).To(Equal("PIG-001"))
	})
})
