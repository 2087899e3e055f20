// Package redpanda provides the Redpanda/Kafka queue integration for
// asynchronous score recalculations. Tasks are produced transactionally and
// consumed by a worker-pool consumer with read-committed isolation.
package redpanda

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/talentfolio/scoring-engine/internal/adapter/observability"
	"github.com/talentfolio/scoring-engine/internal/domain"
)

// TopicRecalculate carries score recalculation tasks.
const TopicRecalculate = "score-recalculations"

// Producer wraps a transactional Kafka producer and implements domain.Queue.
type Producer struct {
	client *kgo.Client
	topic  string
	// Serializes transactions; the client allows one open transaction at a time.
	txLock chan struct{}
}

// NewProducer constructs a transactional Producer and ensures the topic exists.
func NewProducer(brokers []string) (*Producer, error) {
	return NewProducerWithTopic(brokers, "scoring-engine-producer", TopicRecalculate)
}

// NewProducerWithTopic constructs a Producer against a specific topic and
// transactional ID, which lets tests isolate themselves.
func NewProducerWithTopic(brokers []string, transactionalID, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := createTopicIfNotExists(context.Background(), client, topic, 1, 1); err != nil {
		// The broker may have created it concurrently; the producer still works.
		slog.Warn("topic creation failed",
			slog.String("topic", topic),
			slog.Any("error", err))
	}

	slog.Info("redpanda producer created",
		slog.Any("brokers", brokers),
		slog.String("topic", topic))
	return &Producer{
		client: client,
		topic:  topic,
		txLock: make(chan struct{}, 1),
	}, nil
}

// EnqueueRecalculate publishes a recalculation task and returns its task ID.
// A missing TaskID gets a fresh ULID.
func (p *Producer) EnqueueRecalculate(ctx domain.Context, task domain.RecalculateTask) (string, error) {
	if task.UserID == "" {
		return "", fmt.Errorf("op=queue.enqueue: %w: empty user id", domain.ErrInvalidArgument)
	}
	if task.TaskID == "" {
		task.TaskID = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	}

	select {
	case p.txLock <- struct{}{}:
		defer func() { <-p.txLock }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := p.client.BeginTransaction(); err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	b, err := json.Marshal(task)
	if err != nil {
		p.abort(ctx)
		return "", fmt.Errorf("marshal task: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		// User ID keys the record so tasks for one user stay ordered.
		Key:   []byte(task.UserID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "task_id", Value: []byte(task.TaskID)},
			{Key: "user_id", Value: []byte(task.UserID)},
		},
	}

	e := kgo.AbortingFirstErrPromise(p.client)
	p.client.Produce(ctx, record, e.Promise())
	if err := e.Err(); err != nil {
		p.abort(ctx)
		return "", fmt.Errorf("produce: %w", err)
	}

	if err := p.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	observability.TasksEnqueuedTotal.Inc()
	slog.Info("recalculation task enqueued",
		slog.String("task_id", task.TaskID),
		slog.String("user_id", task.UserID),
		slog.String("topic", p.topic))
	return task.TaskID, nil
}

func (p *Producer) abort(ctx context.Context) {
	if err := p.client.EndTransaction(ctx, kgo.TryAbort); err != nil {
		slog.Error("abort transaction failed", slog.Any("error", err))
	}
}

// Close shuts the underlying client down.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
