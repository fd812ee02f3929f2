package messaging

import (
	"member-service/src/internal/model"
	kafka "member-service/src/pkg/kafka/confluent"
	"member-service/src/pkg/log"
)

// MemberProducer publishes the core's structured events: a registration and
// every wallet mutation. Consumers (notifications, analytics) live outside
// this service.
type MemberProducer struct {
	RegisteredProducer  Producer[*model.MemberRegisteredEvent]
	TransactionProducer Producer[*model.WalletTransactionEvent]
}

func NewMemberProducer(producer kafka.Producer, log log.Log) *MemberProducer {
	return &MemberProducer{
		RegisteredProducer: Producer[*model.MemberRegisteredEvent]{
			Producer: producer,
			Topic:    "member-registered",
			Log:      log,
		},
		TransactionProducer: Producer[*model.WalletTransactionEvent]{
			Producer: producer,
			Topic:    "wallet-transaction",
			Log:      log,
		},
	}
}

func (m *MemberProducer) SendRegistered(event *model.MemberRegisteredEvent) error {
	return m.RegisteredProducer.Send(event)
}

func (m *MemberProducer) SendTransaction(event *model.WalletTransactionEvent) error {
	return m.TransactionProducer.Send(event)
}
