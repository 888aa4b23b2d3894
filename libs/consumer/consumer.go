package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/equitylawandco/lawsite/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Handler func(ctx context.Context, msg kafka.Message) error

// Inbox deduplicates deliveries per consumer group.
type Inbox interface {
	Record(ctx context.Context, consumer, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, consumer, eventID string) error
}

// MessageReader fetches without committing; offsets move only through
// CommitMessages once a message has been handled or skipped.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	minRetryDelay = 500 * time.Millisecond
	maxRetryDelay = 30 * time.Second
)

type Consumer struct {
	reader   MessageReader
	logger   *slog.Logger
	inbox    Inbox
	group    string
	handler  Handler
	minDelay time.Duration
	maxDelay time.Duration
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

func New(logger *slog.Logger, inboxRepo Inbox, cfg Config, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewWithReader(logger, inboxRepo, cfg.GroupID, reader, handler)
}

func NewWithReader(logger *slog.Logger, inboxRepo Inbox, group string, reader MessageReader, handler Handler) *Consumer {
	return &Consumer{
		reader:   reader,
		logger:   logger.With("consumer_group", group),
		inbox:    inboxRepo,
		group:    group,
		handler:  handler,
		minDelay: minRetryDelay,
		maxDelay: maxRetryDelay,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer func() { _ = c.reader.Close() }()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka fetch error", "err", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}
		if !c.processUntilDone(ctx, msg) {
			return
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka commit failed", "err", err, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

// processUntilDone retries msg with capped exponential backoff. It returns
// false when ctx ends before the message is handled.
func (c *Consumer) processUntilDone(ctx context.Context, msg kafka.Message) bool {
	delay := c.minDelay
	for attempt := 1; ; attempt++ {
		err := c.Process(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		c.logger.Warn("retrying message", "attempt", attempt, "delay", delay, "partition", msg.Partition, "offset", msg.Offset)
		if !sleep(ctx, delay) {
			return false
		}
		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Process handles one message: dedupe through the inbox, run the handler and
// release the inbox entry when the handler fails so the next attempt runs it
// again. A nil error means the offset may be committed.
func (c *Consumer) Process(ctx context.Context, msg kafka.Message) error {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("messaging.consumer.group", c.group),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)

	ok, err := c.inbox.Record(ctxSpan, c.group, meta.EventID, meta.EventType)
	if err != nil {
		c.logger.Error("inbox record failed", "err", err, "event_id", meta.EventID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "inbox record failed")
		return err
	}
	if !ok {
		c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		return nil
	}

	if err := c.handler(ctxSpan, msg); err != nil {
		c.logger.Error("handler error", "err", err, "event_id", meta.EventID, "event_type", meta.EventType)
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		if ferr := c.inbox.Forget(ctxSpan, c.group, meta.EventID); ferr != nil {
			c.logger.Error("inbox forget failed", "err", ferr, "event_id", meta.EventID)
		}
		return err
	}
	return nil
}
