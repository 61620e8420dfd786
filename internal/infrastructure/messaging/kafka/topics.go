package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	TopicDeadLetter = "structure.dead_letter"

	schemaVersion = "v1"
	eventSource   = "chemgraph"
)

// TopicName applies the deployment prefix, "<prefix>.<base>" or just base.
func TopicName(prefix, base string) string {
	if prefix == "" {
		return base
	}
	return prefix + "." + base
}

// LibraryTopics lists the topics the worker subscribes to.
func LibraryTopics(prefix string) []string {
	return []string{
		TopicName(prefix, library.TopicStructureImported),
		TopicName(prefix, library.TopicStructureDeleted),
	}
}

// EventEnvelope wraps every event put on the bus.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEventEnvelope(e library.Event) (*EventEnvelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     string(e.Type),
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// Event decodes the payload.
func (env *EventEnvelope) Event() (library.Event, error) {
	var e library.Event
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return e, errors.New(errors.ErrCodeSerialization, "envelope has no payload").WithDetail(env.EventID)
	}
	if err := json.Unmarshal(env.Payload, &e); err != nil {
		return e, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal event payload").WithDetail(env.EventID)
	}
	return e, nil
}

// DecodeMessage turns a fetched message back into a library event.
func DecodeMessage(msg kafka.Message) (library.Event, error) {
	if len(msg.Value) == 0 {
		return library.Event{}, errors.New(errors.ErrCodeSerialization, "empty message value").
			WithDetailf("%s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return library.Event{}, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal envelope")
	}
	return env.Event()
}

// TopicSpec describes one topic to create.
type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

func DefaultTopics(prefix string) []TopicSpec {
	week := int64(7 * 24 * time.Hour / time.Millisecond)
	return []TopicSpec{
		{Name: TopicName(prefix, library.TopicStructureImported), NumPartitions: 6, ReplicationFactor: 1, RetentionMs: week},
		{Name: TopicName(prefix, library.TopicStructureDeleted), NumPartitions: 3, ReplicationFactor: 1, RetentionMs: week},
		{Name: TopicName(prefix, TopicDeadLetter), NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 4 * week},
	}
}

// connAPI is the part of *kafka.Conn topic management uses.
type connAPI interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the library topics on a development cluster.
type TopicManager struct {
	conn   connAPI
	logger logging.Logger
}

func NewTopicManager(ctx context.Context, brokers []string, log logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers required")
	}
	conn, err := (&kafka.Dialer{Timeout: 10 * time.Second}).DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEventPublishFailed, "dial kafka").WithDetail(brokers[0])
	}
	return newTopicManager(conn, log), nil
}

func newTopicManager(conn connAPI, log logging.Logger) *TopicManager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: log.Named("topics")}
}

func (m *TopicManager) TopicExists(name string) bool {
	partitions, err := m.conn.ReadPartitions(name)
	return err == nil && len(partitions) > 0
}

// EnsureTopics creates every missing topic.
func (m *TopicManager) EnsureTopics(specs []TopicSpec) error {
	for _, spec := range specs {
		if spec.Name == "" || spec.NumPartitions <= 0 || spec.ReplicationFactor <= 0 {
			return errors.InvalidParam("invalid topic spec").WithDetail(spec.Name)
		}
		if m.TopicExists(spec.Name) {
			continue
		}
		cfg := kafka.TopicConfig{
			Topic:             spec.Name,
			NumPartitions:     spec.NumPartitions,
			ReplicationFactor: spec.ReplicationFactor,
		}
		if spec.RetentionMs > 0 {
			cfg.ConfigEntries = append(cfg.ConfigEntries, kafka.ConfigEntry{
				ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(spec.RetentionMs, 10),
			})
		}
		if err := m.conn.CreateTopics(cfg); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
			return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "create topic").WithDetail(spec.Name)
		}
		m.logger.Info("topic created", logging.String("topic", spec.Name))
	}
	return nil
}

func (m *TopicManager) Close() error { return m.conn.Close() }

//Personal.AI order the ending
