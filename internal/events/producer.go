package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer interface {
	SendMessage(ctx context.Context, key, value []byte) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaProducer) SendMessage(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// ConsoleProducer logs entries instead of shipping them. Used when no
// brokers are configured.
type ConsoleProducer struct {
	log *zap.Logger
}

func NewConsoleProducer(log *zap.Logger) *ConsoleProducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsoleProducer{log: log}
}

func (p *ConsoleProducer) SendMessage(_ context.Context, key, value []byte) error {
	p.log.Info("delivery event",
		zap.ByteString("key", key),
		zap.ByteString("value", value))
	return nil
}

func (p *ConsoleProducer) Close() error { return nil }
