package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/devclub-nstru/tryyel-backend/logging"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes order events keyed by order id, so one order's
// events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logging.Error("kafka publish failed", err, logging.Fields{Extra: map[string]int{"messages": len(messages)}})
			}
		},
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	msg, err := encode(e)
	if err != nil {
		logging.Error("encode order event failed", err, logging.Fields{OrderID: e.OrderID})
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logging.Error("kafka publish failed", err, logging.Fields{OrderID: e.OrderID})
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(e Event) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}
