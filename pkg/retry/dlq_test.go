package retry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	topic   string
	key     string
	value   interface{}
	headers map[string]string
	err     error
}

func (p *recordingProducer) ProduceJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error {
	p.topic = topic
	p.key = key
	p.value = value
	p.headers = headers
	return p.err
}

func TestDLQHandler_SuccessDoesNotPublish(t *testing.T) {
	p := &recordingProducer{}
	h := NewDLQHandler(p, &DLQConfig{Source: "notifier", Retry: fastConfig(2)})

	err := h.Process(context.Background(), "ticket-events", "AF1234XY", []byte(`{}`), nil, func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Empty(t, p.topic)
}

func TestDLQHandler_ExhaustedRetriesPublish(t *testing.T) {
	p := &recordingProducer{}
	h := NewDLQHandler(p, &DLQConfig{Source: "notifier", Retry: fastConfig(2)})
	smtpErr := errors.New("smtp unavailable")

	err := h.Process(context.Background(), "ticket-events", "AF1234XY", []byte(`{"code":"AF1234XY"}`), nil, func(ctx context.Context) error {
		return smtpErr
	})

	require.ErrorIs(t, err, smtpErr)
	assert.Equal(t, "ticket-events.dlq", p.topic)
	assert.Equal(t, "AF1234XY", p.key)
	assert.Equal(t, "3", p.headers["attempts"])

	dl, ok := p.value.(*DeadLetter)
	require.True(t, ok)
	assert.Equal(t, "notifier", dl.Source)
	assert.JSONEq(t, `{"code":"AF1234XY"}`, string(dl.Payload))

	raw, err := json.Marshal(dl)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"original_topic":"ticket-events"`)
}

func TestDLQHandler_PermanentErrorPublishedWithoutRetry(t *testing.T) {
	p := &recordingProducer{}
	h := NewDLQHandler(p, &DLQConfig{Retry: fastConfig(5)})
	calls := 0

	err := h.Process(context.Background(), "ticket-events", "k", nil, nil, func(ctx context.Context) error {
		calls++
		return Permanent(errors.New("bad address"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "ticket-events.dlq", p.topic)
}

func TestDLQHandler_PublishFailure(t *testing.T) {
	p := &recordingProducer{err: errors.New("broker down")}
	h := NewDLQHandler(p, &DLQConfig{TopicSuffix: ".dead", Retry: fastConfig(0)})

	err := h.Process(context.Background(), "t", "k", nil, nil, func(ctx context.Context) error {
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish dead letter")
	assert.Equal(t, "t.dead", h.Topic("t"))
}
