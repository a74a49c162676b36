package notifier

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessageWriter часть kafka.Writer, которой пользуется нотификатор
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
