package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DeadLetter is what lands on a dead letter topic once retries are exhausted
type DeadLetter struct {
	OriginalTopic  string            `json:"original_topic"`
	OriginalKey    string            `json:"original_key"`
	Payload        json.RawMessage   `json:"payload"`
	Headers        map[string]string `json:"headers,omitempty"`
	Error          string            `json:"error"`
	Attempts       int               `json:"attempts"`
	FirstAttemptAt time.Time         `json:"first_attempt_at"`
	MovedAt        time.Time         `json:"moved_at"`
	Source         string            `json:"source"`
}

// JSONProducer is the subset of the Kafka producer used for dead letters
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// DLQConfig configures dead letter routing
type DLQConfig struct {
	// TopicSuffix is appended to the original topic (default ".dlq")
	TopicSuffix string
	Source      string
	Retry       *Config
}

// DLQHandler retries an operation and parks the message when it keeps failing
type DLQHandler struct {
	producer JSONProducer
	config   DLQConfig
	retrier  *Retrier
}

// NewDLQHandler creates a handler; a nil producer drops dead letters
func NewDLQHandler(producer JSONProducer, cfg *DLQConfig) *DLQHandler {
	c := DLQConfig{TopicSuffix: ".dlq", Source: "unknown"}
	if cfg != nil {
		if cfg.TopicSuffix != "" {
			c.TopicSuffix = cfg.TopicSuffix
		}
		if cfg.Source != "" {
			c.Source = cfg.Source
		}
		c.Retry = cfg.Retry
	}
	return &DLQHandler{
		producer: producer,
		config:   c,
		retrier:  New(c.Retry),
	}
}

// Topic returns the dead letter topic for topic
func (h *DLQHandler) Topic(topic string) string {
	return topic + h.config.TopicSuffix
}

// Process runs op with retries. When op keeps failing the message is
// published to the dead letter topic and the last error is returned.
// Permanent errors skip the retries but are still dead-lettered.
func (h *DLQHandler) Process(ctx context.Context, topic, key string, payload []byte, headers map[string]string, op Operation) error {
	first := time.Now()
	attempts := 0
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		attempts++
		return op(ctx)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrContextCanceled) {
		return err
	}

	if h.producer == nil {
		return err
	}

	dl := &DeadLetter{
		OriginalTopic:  topic,
		OriginalKey:    key,
		Payload:        json.RawMessage(payload),
		Headers:        headers,
		Error:          err.Error(),
		Attempts:       attempts,
		FirstAttemptAt: first,
		MovedAt:        time.Now(),
		Source:         h.config.Source,
	}
	dlHeaders := map[string]string{
		"original_topic": topic,
		"attempts":       strconv.Itoa(attempts),
		"source":         h.config.Source,
	}
	if pubErr := h.producer.ProduceJSON(ctx, h.Topic(topic), key, dl, dlHeaders); pubErr != nil {
		return fmt.Errorf("publish dead letter: %w (original error: %v)", pubErr, err)
	}
	return err
}
