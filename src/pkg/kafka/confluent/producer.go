package kafka

import (
	"fmt"

	"member-service/src/pkg/log"

	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type producer struct {
	producer *k.Producer
	log      log.Log
}

func NewProducer(config *k.ConfigMap, logger log.Log) (Producer, error) {
	p, err := k.NewProducer(config)
	if err != nil {
		return nil, err
	}

	// drain delivery reports so the internal queue never fills up
	go func() {
		for e := range p.Events() {
			if m, ok := e.(*k.Message); ok && m.TopicPartition.Error != nil {
				logger.Error("kafka-producer", m.TopicPartition.Error.Error(), "delivery", "")
			}
		}
	}()

	return &producer{producer: p, log: logger}, nil
}

func (p *producer) Publish(message *k.Message) error {
	if err := p.producer.Produce(message, nil); err != nil {
		p.log.Error("kafka-producer", fmt.Sprintf("failed to produce message: %v", err), "publish", "")
		return err
	}
	return nil
}
