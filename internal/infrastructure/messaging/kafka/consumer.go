package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

var ErrAlreadyRunning = errors.New(errors.CodeConflict, "consumer already running")

// Handler processes one library event. A returned error is retried.
type Handler func(ctx context.Context, e library.Event) error

// reader abstracts *kafka.Reader for tests.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds library events from a consumer group into a Handler.
// Messages are committed after they are handled or dead-lettered, so a
// crash replays at most the in-flight message.
type Consumer struct {
	reader     reader
	handler    Handler
	deadLetter *Producer
	logger     logging.Logger
	metrics    *prometheus.AppMetrics

	maxRetries   int
	retryBackoff time.Duration
	maxBackoff   time.Duration
	fetchBackoff time.Duration

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewConsumer subscribes cfg.GroupID to the library topics. deadLetter may
// be nil, in which case exhausted messages are dropped after logging.
func NewConsumer(cfg config.KafkaConfig, handler Handler, deadLetter *Producer, log logging.Logger, metrics *prometheus.AppMetrics) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers required")
	}
	if cfg.GroupID == "" {
		return nil, errors.InvalidParam("kafka group_id required")
	}
	if handler == nil {
		return nil, errors.InvalidParam("consumer handler required")
	}
	start := kafka.FirstOffset
	switch cfg.StartOffset {
	case "", "earliest":
	case "latest":
		start = kafka.LastOffset
	default:
		return nil, errors.InvalidParam("kafka start_offset must be earliest or latest").WithDetail(cfg.StartOffset)
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    LibraryTopics(cfg.TopicPrefix),
		MinBytes:       1,
		MaxBytes:       10 << 20,
		MaxWait:        time.Second,
		StartOffset:    start,
		SessionTimeout: 30 * time.Second,
		Dialer:         &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	})
	c := newConsumer(r, handler, deadLetter, log, metrics)
	if cfg.MaxRetries > 0 {
		c.maxRetries = cfg.MaxRetries
	}
	return c, nil
}

func newConsumer(r reader, handler Handler, deadLetter *Producer, log logging.Logger, metrics *prometheus.AppMetrics) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Consumer{
		reader:       r,
		handler:      handler,
		deadLetter:   deadLetter,
		logger:       log.Named("consumer"),
		metrics:      metrics,
		maxRetries:   3,
		retryBackoff: time.Second,
		maxBackoff:   30 * time.Second,
		fetchBackoff: time.Second,
	}
}

// Start runs the consume loop in the background until Close.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.loop(ctx)
	c.logger.Info("kafka consumer started")
	return nil
}

func (c *Consumer) loop(ctx context.Context) {
	defer c.wg.Done()
	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.fetchBackoff):
			}
			continue
		}
		c.handle(ctx, m)
		if ctx.Err() != nil {
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.String("topic", m.Topic), logging.Int64("offset", m.Offset), logging.Err(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	e, err := DecodeMessage(m)
	if err != nil {
		prometheus.RecordEventConsumed(c.metrics, m.Topic, err)
		c.giveUp(ctx, m, err)
		return
	}
	err = c.process(ctx, e)
	prometheus.RecordEventConsumed(c.metrics, m.Topic, err)
	if err != nil && ctx.Err() == nil {
		c.giveUp(ctx, m, err)
	}
}

// process calls the handler, retrying with doubling backoff.
func (c *Consumer) process(ctx context.Context, e library.Event) error {
	err := c.handler(ctx, e)
	backoff := c.retryBackoff
	for i := 0; err != nil && i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		err = c.handler(ctx, e)
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
	return err
}

func (c *Consumer) giveUp(ctx context.Context, m kafka.Message, cause error) {
	c.logger.Error("event dropped",
		logging.String("topic", m.Topic),
		logging.Int64("offset", m.Offset),
		logging.String("key", string(m.Key)),
		logging.Err(cause))
	if c.deadLetter == nil {
		return
	}
	if err := c.deadLetter.publishRaw(ctx, m, cause); err != nil {
		c.logger.Error("dead letter publish failed", logging.Err(err))
	}
}

// Close stops the loop, waits for the in-flight message and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("kafka consumer closed")
	return err
}

//Personal.AI order the ending
