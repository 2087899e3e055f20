package redpanda

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

// Consumer polls recalculation tasks from the topic and hands each record to
// a TaskHandler through a bounded worker pool. Offsets are auto-committed per
// mark, so a crashed worker replays its in-flight task; the recalculation is
// idempotent, which makes the replay safe.
type Consumer struct {
	client  *kgo.Client
	handler *TaskHandler
	groupID string
	topic   string
	workers int
}

// NewConsumer constructs a group Consumer over the default topic.
func NewConsumer(brokers []string, groupID string, handler *TaskHandler, workers int) (*Consumer, error) {
	return NewConsumerWithTopic(brokers, groupID, handler, workers, TopicRecalculate)
}

// NewConsumerWithTopic constructs a Consumer against a specific topic, which
// lets tests isolate themselves.
func NewConsumerWithTopic(brokers []string, groupID string, handler *TaskHandler, workers int, topic string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if handler == nil {
		return nil, fmt.Errorf("missing task handler")
	}
	if workers <= 0 {
		workers = 4
	}

	tmp, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("temp client: %w", err)
	}
	if err := createTopicIfNotExists(context.Background(), tmp, topic, 1, 1); err != nil {
		slog.Warn("topic creation failed",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
	tmp.Close()

	kotelService := kotel.NewKotel(kotel.WithTracer(
		kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider())),
	))

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.WithHooks(kotelService.Hooks()...),
		kgo.DialTimeout(10*time.Second),
		kgo.SessionTimeout(30*time.Second),
		kgo.HeartbeatInterval(3*time.Second),
		kgo.AutoCommitMarks(),
		kgo.AutoCommitInterval(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda consumer client: %w", err)
	}

	slog.Info("redpanda consumer created",
		slog.String("group_id", groupID),
		slog.String("topic", topic),
		slog.Int("workers", workers))
	return &Consumer{
		client:  client,
		handler: handler,
		groupID: groupID,
		topic:   topic,
		workers: workers,
	}, nil
}

// Start consumes until the context is cancelled. It blocks.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("starting redpanda consumer",
		slog.String("group_id", c.groupID),
		slog.String("topic", c.topic))

	records := make(chan *kgo.Record, c.workers*2)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range records {
				c.handler.Handle(ctx, rec.Value)
				c.client.MarkCommitRecords(rec)
			}
		}()
	}

	for {
		if ctx.Err() != nil {
			break
		}
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			break
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Error("fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("error", err))
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			select {
			case records <- rec:
			case <-ctx.Done():
			}
		})
	}

	close(records)
	wg.Wait()
	slog.Info("redpanda consumer stopped")
	return ctx.Err()
}

// Close shuts the underlying client down.
func (c *Consumer) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
