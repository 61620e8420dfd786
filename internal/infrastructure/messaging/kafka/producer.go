package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeEventPublishFailed, "producer closed")

const maxMessageBytes = 1 << 20

// writer abstracts *kafka.Writer for tests.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes library events keyed by structure id, so every event
// of one structure lands on the same partition.
type Producer struct {
	writer  writer
	prefix  string
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	closed  atomic.Bool
}

var _ library.EventPublisher = (*Producer)(nil)

func NewProducer(cfg config.KafkaConfig, log logging.Logger, metrics *prometheus.AppMetrics) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers required")
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.InvalidParam("kafka max_retries must be >= 0")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return newProducer(w, cfg.TopicPrefix, log, metrics), nil
}

func newProducer(w writer, prefix string, log logging.Logger, metrics *prometheus.AppMetrics) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, prefix: prefix, logger: log.Named("producer"), metrics: metrics}
}

// Publish writes e to its topic and waits for the acknowledgement.
func (p *Producer) Publish(ctx context.Context, e library.Event) (err error) {
	topic := TopicName(p.prefix, e.Topic())
	defer func() { prometheus.RecordEventPublished(p.metrics, topic, err) }()

	if p.closed.Load() {
		return ErrProducerClosed
	}
	if e.StructureID == "" {
		return errors.InvalidParam("event has no structure id")
	}
	msg, err := p.message(topic, e)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "publish event").WithDetail(topic)
	}
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("structure_id", e.StructureID),
		logging.Duration("latency", time.Since(start)))
	return nil
}

func (p *Producer) message(topic string, e library.Event) (kafka.Message, error) {
	env, err := NewEventEnvelope(e)
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "marshal envelope")
	}
	if len(value) > maxMessageBytes {
		return kafka.Message{}, errors.InvalidParam("event too large").WithDetailf("%d bytes", len(value))
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(e.StructureID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
		Time: env.Timestamp,
	}, nil
}

// publishRaw forwards an undeliverable message to the dead letter topic.
func (p *Producer) publishRaw(ctx context.Context, msg kafka.Message, cause error) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	headers := append([]kafka.Header{}, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "error_message", Value: []byte(cause.Error())},
	)
	topic := TopicName(p.prefix, TopicDeadLetter)
	err := p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: msg.Key, Value: msg.Value, Headers: headers})
	prometheus.RecordEventPublished(p.metrics, topic, err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "publish dead letter")
	}
	return nil
}

// Close flushes pending writes once.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed")
	return err
}

//Personal.AI order the ending
