package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"member-service/src/internal/model"
	"member-service/src/internal/repository"
	"member-service/src/internal/usecase"
	"member-service/src/pkg/log"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultCommissionRate = "0.05"

// CommissionConsumer listens for completed orders and credits the selling
// member's direct upline. Offsets are only marked after the credit lands, so
// a crash mid-credit replays the message; CreditCommission writes a fresh
// reference each time, which makes replays visible in the ledger rather than
// silently dropped.
type CommissionConsumer struct {
	Log              log.Log
	Config           *viper.Viper
	MemberRepository *repository.MemberRepository
	Wallet           *usecase.WalletUseCase
}

func NewCommissionConsumer(
	logger log.Log,
	cfg *viper.Viper,
	memberRepository *repository.MemberRepository,
	wallet *usecase.WalletUseCase,
) *CommissionConsumer {
	return &CommissionConsumer{
		Log:              logger,
		Config:           cfg,
		MemberRepository: memberRepository,
		Wallet:           wallet,
	}
}

func (c *CommissionConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *CommissionConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (c *CommissionConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := c.handle(session.Context(), message.Value); err != nil {
			c.Log.Error("commission-consumer", err.Error(), "ConsumeClaim", string(message.Key))
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *CommissionConsumer) handle(ctx context.Context, value []byte) error {
	var event model.OrderCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("malformed order completed event: %w", err)
	}
	if event.SellerID == "" || event.Amount.LessThanOrEqual(decimal.Zero) {
		c.Log.Warn("commission-consumer", "skipping event without seller or amount", "handle", event.EventID)
		return nil
	}

	seller, err := c.MemberRepository.FindActiveBySellerID(ctx, event.SellerID)
	if err != nil {
		return fmt.Errorf("seller %s not found: %w", event.SellerID, err)
	}
	if !seller.UplineID.Valid {
		c.Log.Info("commission-consumer", "seller has no upline, no commission", "handle", event.SellerID)
		return nil
	}

	upline, err := c.MemberRepository.FindActiveBySellerID(ctx, seller.UplineID.String)
	if err != nil {
		c.Log.Warn("commission-consumer", "upline not active, no commission", "handle", seller.UplineID.String)
		return nil
	}

	commission := event.Amount.Mul(c.rate(upline.SellerLevel)).Round(2)
	if commission.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	return c.Wallet.CreditCommission(ctx, upline.ID, event.OrderID, commission)
}

func (c *CommissionConsumer) rate(level int) decimal.Decimal {
	key := fmt.Sprintf("commission.rate.level_%d", level)
	if c.Config.IsSet(key) {
		if rate, err := decimal.NewFromString(c.Config.GetString(key)); err == nil {
			return rate
		}
	}
	rate, _ := decimal.NewFromString(defaultCommissionRate)
	return rate
}

// Run blocks on the consumer group loop until the context is cancelled.
func Run(ctx context.Context, cfg *viper.Viper, logger log.Log, handler sarama.ConsumerGroupHandler) error {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Consumer.Return.Errors = true

	brokers := cfg.GetStringSlice("kafka.brokers")
	if len(brokers) == 0 {
		brokers = []string{cfg.GetString("kafka.url")}
	}
	groupID := cfg.GetString("app.name")
	topic := cfg.GetString("kafka.topic.order_completed")
	if topic == "" {
		topic = "order-completed"
	}

	group, err := sarama.NewConsumerGroup(brokers, groupID, saramaCfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	defer group.Close()

	go func() {
		for err := range group.Errors() {
			logger.Error("commission-consumer", err.Error(), "Run", topic)
		}
	}()

	for {
		if err := group.Consume(ctx, []string{topic}, handler); err != nil {
			logger.Error("commission-consumer", err.Error(), "Run", topic)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
