package mq_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"farmsight.dev/farmsight/pkg/mq"
)

var _ = Describe("MQ Client", func() {
	var (
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	})

	Describe("New", func() {
		It("should create a new client instance", func() {
			client := mq.New("observations", "amqp://localhost:5672", logger)
			Expect(client).NotTo(BeNil())
		})

		It("should start background reconnection against an unreachable broker", func() {
			client := mq.New("observations", "amqp://invalid:5672", logger)
			Expect(client).NotTo(BeNil())

			// Give the goroutine a moment to start
			time.Sleep(100 * time.Millisecond)

			_ = client.Close()
		})
	})

	Describe("Push", func() {
		Context("when not connected", func() {
			It("should retry with backoff until the context expires", func() {
				client := mq.New("observations", "amqp://invalid:5672", logger)

				// Give client time to attempt connection and fail
				time.Sleep(100 * time.Millisecond)

				ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
				defer cancel()

				start := time.Now()
				err := client.Push(ctx, []byte(`{"type":"temperature"}`))
				elapsed := time.Since(start)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(SatisfyAny(
					ContainSubstring("context deadline exceeded"),
					ContainSubstring("context canceled"),
				))
				// The first backoff interval is 100ms, so at least one wait happened.
				Expect(elapsed).To(BeNumerically(">=", 100*time.Millisecond))

				_ = client.Close()
			})

			It("should give up after the maximum retry attempts", func() {
				client := mq.New("observations", "amqp://invalid:5672", logger)

				// Give client time to attempt connection and fail
				time.Sleep(100 * time.Millisecond)

				// Long timeout so the retry limit fires before the context does.
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				start := time.Now()
				err := client.Push(ctx, []byte(`{"type":"bcs"}`))
				elapsed := time.Since(start)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("maximum retry attempts exceeded"))

				// 5 retries with doubling backoff: 100+200+400+800+1600 = 3100ms minimum.
				Expect(elapsed).To(BeNumerically(">=", 3*time.Second))
				Expect(elapsed).To(BeNumerically("<", 10*time.Second))

				_ = client.Close()
			})

			It("should return an error for UnsafePush", func() {
				client := mq.New("observations", "amqp://invalid:5672", logger)

				// Give client time to attempt connection and fail
				time.Sleep(100 * time.Millisecond)

				err := client.UnsafePush(context.Background(), []byte("test message"))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not connected"))

				_ = client.Close()
			})
		})
	})

	Describe("Consume", func() {
		Context("when not connected", func() {
			It("should return an error", func() {
				client := mq.New("observations", "amqp://invalid:5672", logger)

				// Give client time to attempt connection and fail
				time.Sleep(100 * time.Millisecond)

				_, err := client.Consume()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not connected"))

				_ = client.Close()
			})
		})
	})

	Describe("Close", func() {
		Context("when not connected", func() {
			It("should return already closed error", func() {
				client := mq.New("observations", "amqp://invalid:5672", logger)

				// Give client time to attempt connection and fail
				time.Sleep(100 * time.Millisecond)

				err := client.Close()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("already closed"))
			})
		})

		Context("when closing twice", func() {
			It("should return an error on the second close", func() {
				client := mq.New("observations", "amqp://invalid:5672", logger)

				// Give client time to attempt connection and fail
				time.Sleep(100 * time.Millisecond)

				err1 := client.Close()
				Expect(err1).To(HaveOccurred()) // Not connected yet

				err2 := client.Close()
				Expect(err2).To(HaveOccurred())
				Expect(err2.Error()).To(ContainSubstring("already closed"))
			})
		})
	})

	Describe("Concurrent Access", func() {
		It("should handle concurrent UnsafePush attempts safely", func() {
			client := mq.New("observations", "amqp://invalid:5672", logger)
			defer func() { _ = client.Close() }()

			// Wait for connection failure
			time.Sleep(100 * time.Millisecond)

			done := make(chan bool, 3)
			for i := 0; i < 3; i++ {
				go func() {
					_ = client.UnsafePush(context.Background(), []byte("test"))
					done <- true
				}()
			}

			for i := 0; i < 3; i++ {
				Eventually(done).Should(Receive())
			}
		})
	})
})
