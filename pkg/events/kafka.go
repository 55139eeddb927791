package events

import (
	"context"
	"errors"
	"fmt"
	"hoteldesk/pkg/logger"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

var (
	ErrPublisherClosed = errors.New("event publisher is closed")
	ErrEmptyKey        = errors.New("message key cannot be empty")
	ErrEmptyValue      = errors.New("message value cannot be empty")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Middleware intercepts each publish.
type Middleware func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	Source       string
	MaxAttempts  int
	BatchTimeout time.Duration
}

// KafkaPublisher writes session events synchronously, partitioned by profile
// so one profile's events stay ordered.
type KafkaPublisher struct {
	writer     messageWriter
	topic      string
	source     string
	log        *logger.Logger
	middleware []Middleware
	closed     bool
	mu         sync.RWMutex
}

func NewKafkaPublisher(cfg KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Compression:  compress.Snappy,
		MaxAttempts:  cfg.MaxAttempts,
		BatchTimeout: cfg.BatchTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Debug("kafka writer error", "detail", fmt.Sprintf(msg, args...))
		}),
	}
	return newKafkaPublisher(writer, cfg.Topic, cfg.Source, log), nil
}

func newKafkaPublisher(writer messageWriter, topic, source string, log *logger.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: writer,
		topic:  topic,
		source: source,
		log:    log,
	}
	p.Use(LoggingMiddleware(log, topic))
	return p
}

func (p *KafkaPublisher) Use(mw Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, mw)
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	closed := p.closed
	chain := p.middleware
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}

	msg, err := ToMessage(event, p.source)
	if err != nil {
		return err
	}
	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	handler := p.write
	for i := len(chain) - 1; i >= 0; i-- {
		mw := chain[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler(ctx, msg)
}

func (p *KafkaPublisher) write(ctx context.Context, msg Message) error {
	out := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return p.writer.WriteMessages(ctx, out)
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func LoggingMiddleware(log *logger.Logger, topic string) Middleware {
	return func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		attrs := []any{
			"topic", topic,
			"key", msg.Key,
			"event_id", msg.Headers[HeaderEventID],
			"event_type", msg.Headers[HeaderEventType],
			"duration", time.Since(start),
		}
		if err != nil {
			log.Warn("Failed to publish session event", append(attrs, "error", err)...)
			return err
		}
		log.Debug("Published session event", attrs...)
		return nil
	}
}
