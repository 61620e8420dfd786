package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

type mockWriter struct {
	mu        sync.Mutex
	messages  []kafka.Message
	writeErr  error
	closeCall int
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closeCall++
	return nil
}

func (w *mockWriter) sent() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}

func newTestMetrics(t *testing.T) (*prometheus.AppMetrics, prometheus.MetricsCollector) {
	t.Helper()
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "kt"}, nil)
	require.NoError(t, err)
	return prometheus.NewAppMetrics(c), c
}

func testEvent() library.Event {
	s := library.NewStructure("cml", "cml", []byte("<cml/>"), library.Summary{})
	return library.ImportedEvent(s)
}

func TestNewProducer_Validates(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, nil, nil)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewProducer(config.KafkaConfig{Brokers: []string{"b:9092"}, MaxRetries: -1}, nil, nil)
	assert.True(t, pkgerrors.IsValidation(err))

	p, err := NewProducer(config.KafkaConfig{Brokers: []string{"b:9092"}}, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_Publish(t *testing.T) {
	w := &mockWriter{}
	m, c := newTestMetrics(t)
	p := newProducer(w, "dev", nil, m)
	e := testEvent()

	require.NoError(t, p.Publish(context.Background(), e))

	sent := w.sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "dev.structure.imported", msg.Topic)
	assert.Equal(t, []byte(e.StructureID), msg.Key)
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte("imported")})

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "chemgraph", env.Source)
	assert.Equal(t, "v1", env.SchemaVersion)
	_, err := uuid.Parse(env.EventID)
	assert.NoError(t, err)

	decoded, err := DecodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, e.StructureID, decoded.StructureID)
	assert.Equal(t, e.ContentHash, decoded.ContentHash)
	assert.True(t, e.OccurredAt.Equal(decoded.OccurredAt))

	n, err := testutil.GatherAndCount(c.Gatherer(), "kt_events_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProducer_PublishDeletedUsesDeletedTopic(t *testing.T) {
	w := &mockWriter{}
	p := newProducer(w, "", nil, nil)
	s := library.NewStructure("sdf", "sdf", []byte("x"), library.Summary{})

	require.NoError(t, p.Publish(context.Background(), library.DeletedEvent(s)))
	assert.Equal(t, "structure.deleted", w.sent()[0].Topic)
}

func TestProducer_PublishErrors(t *testing.T) {
	w := &mockWriter{writeErr: errors.New("leader not available")}
	p := newProducer(w, "", nil, nil)

	err := p.Publish(context.Background(), testEvent())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeEventPublishFailed))

	err = p.Publish(context.Background(), library.Event{Type: library.EventImported})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestProducer_Close(t *testing.T) {
	w := &mockWriter{}
	p := newProducer(w, "", nil, nil)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closeCall)
	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), testEvent()))
}

func TestProducer_PublishRawAddsHeaders(t *testing.T) {
	w := &mockWriter{}
	p := newProducer(w, "dev", nil, nil)
	orig := kafka.Message{Topic: "dev.structure.imported", Key: []byte("k"), Value: []byte("v"), Time: time.Now()}

	require.NoError(t, p.publishRaw(context.Background(), orig, errors.New("neo4j down")))
	msg := w.sent()[0]
	assert.Equal(t, "dev.structure.dead_letter", msg.Topic)
	assert.Contains(t, msg.Headers, kafka.Header{Key: "original_topic", Value: []byte("dev.structure.imported")})
	assert.Contains(t, msg.Headers, kafka.Header{Key: "error_message", Value: []byte("neo4j down")})
}

//Personal.AI order the ending
