package kafka

import (
	"context"

	"commission-tracker/internal/broker"
	"commission-tracker/internal/config"

	kafka "github.com/segmentio/kafka-go"
	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ConsumerClient struct {
	consumer *wbkafka.Consumer
}

func NewConsumerClient(cfg *config.Config) *ConsumerClient {
	return &ConsumerClient{
		consumer: wbkafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.OrphanTopic, cfg.Kafka.GroupID),
	}
}

func (c *ConsumerClient) Start(ctx context.Context, out chan<- *broker.Message, strategy retry.Strategy) {
	raw := make(chan kafka.Message, cap(out))

	go c.consumer.StartConsuming(ctx, raw, strategy)
	go bridge(ctx, raw, out)
}

// bridge converts fetched messages until ctx is done or raw is closed after
// a failed fetch.
func bridge(ctx context.Context, raw <-chan kafka.Message, out chan<- *broker.Message) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-raw:
			if !ok {
				return
			}
			select {
			case out <- toMessage(msg):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *ConsumerClient) Commit(ctx context.Context, msg *broker.Message) error {
	return c.consumer.Commit(ctx, kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
	})
}

func (c *ConsumerClient) Close() error {
	return c.consumer.Close()
}

func toMessage(msg kafka.Message) *broker.Message {
	return &broker.Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
}
