package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
)

// Event types published to the contract events topic
const (
	EventContractPaid      = "contract_paid"
	EventContractFulfilled = "contract_fulfilled"
)

// ContractEvent is the message body for contract lifecycle events
type ContractEvent struct {
	Type             string          `json:"type"`
	ContractID       int64           `json:"contract_id"`
	ClientID         int64           `json:"client_id"`
	SoftwareID       int64           `json:"software_id"`
	Amount           decimal.Decimal `json:"amount"`
	InstalmentNumber int             `json:"instalment_number,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// Producer publishes contract lifecycle events. The contract ID is used
// as the message key so events of one contract stay on one partition.
type Producer interface {
	PublishContractEvent(ctx context.Context, event ContractEvent) error
	Close() error
}

type saramaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewProducer creates and configures a new Kafka producer
func NewProducer(brokers []string, topic string, log *logger.Logger) (Producer, error) {
	if len(brokers) == 0 {
		log.Errorw("Kafka brokers list is empty in config, cannot create producer")
		return nil, errors.New("kafka brokers are not configured")
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create producer: %w", err)
	}

	log.Infow("Kafka producer initialized", "brokers", brokers, "topic", topic)

	return &saramaProducer{
		producer: producer,
		topic:    topic,
		log:      log,
	}, nil
}

// PublishContractEvent marshals the event to JSON and sends it
func (p *saramaProducer) PublishContractEvent(ctx context.Context, event ContractEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.log.Errorw("Failed to marshal contract event", "error", err, "contract_id", event.ContractID)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", event.ContractID)),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.log.Errorw("Failed to write message to Kafka", "error", err, "topic", p.topic, "contract_id", event.ContractID)
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	p.log.Debugw("Published contract event",
		"type", event.Type,
		"contract_id", event.ContractID,
		"partition", partition,
		"offset", offset,
	)

	return nil
}

// Close closes the underlying producer
func (p *saramaProducer) Close() error {
	p.log.Infow("Closing Kafka producer...")
	return p.producer.Close()
}

// NopProducer discards events. Used when Kafka is not configured and in
// tests.
type NopProducer struct{}

// PublishContractEvent discards the event
func (NopProducer) PublishContractEvent(ctx context.Context, event ContractEvent) error {
	return nil
}

// Close is a no-op
func (NopProducer) Close() error {
	return nil
}
