package notifier

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const defaultPublishTimeout = 3 * time.Second

// KafkaNotifier публикует события бронирований в Kafka
// Публикация не блокирует вызывающего: ошибки только логируются
type KafkaNotifier struct {
	writer  MessageWriter
	timeout time.Duration
	logger  Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewKafkaNotifier создает нотификатор поверх kafka.Writer
func NewKafkaNotifier(brokers []string, topic string, timeout time.Duration, logger Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}
	return NewWithWriter(writer, timeout, logger)
}

// NewWithWriter создает нотификатор с произвольным writer
func NewWithWriter(writer MessageWriter, timeout time.Duration, logger Logger) *KafkaNotifier {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &KafkaNotifier{
		writer:  writer,
		timeout: timeout,
		logger:  logger,
	}
}

// Notify отправляет событие в фоне; ключ сообщения = id бронирования
func (n *KafkaNotifier) Notify(event BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Notify: failed to marshal event type=%s booking=%s: %v", event.Type, event.BookingID, err)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.Warn("Notify: notifier closed, dropping event type=%s booking=%s", event.Type, event.BookingID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.BookingID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.writer.WriteMessages(ctx, msg); err != nil {
			n.logger.Error("Notify: failed to publish event type=%s booking=%s: %v", event.Type, event.BookingID, err)
			return
		}
		n.logger.Info("Notify: published event type=%s booking=%s", event.Type, event.BookingID)
	}()
}

// Close дожидается отправки начатых сообщений и закрывает writer
func (n *KafkaNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.wg.Wait()
	return n.writer.Close()
}

// Nop нотификатор, который ничего не отправляет
type Nop struct{}

func (Nop) Notify(BookingEvent) {}

func (Nop) Close() error { return nil }
