package payout

import (
	"context"
	"fmt"

	"member-service/src/pkg/log"

	"github.com/shopspring/decimal"
)

// Gateway disburses a withdrawal to an external payout provider. The wire
// protocol is out of scope; implementations report success or failure only.
type Gateway interface {
	Disburse(ctx context.Context, reference string, amount decimal.Decimal, method, accountNumber string) error
}

// StubGateway accepts every disbursement. It stands in for the mobile-money
// integration in environments without one.
type StubGateway struct {
	Log log.Log
}

func NewStubGateway(logger log.Log) *StubGateway {
	return &StubGateway{Log: logger}
}

func (g *StubGateway) Disburse(ctx context.Context, reference string, amount decimal.Decimal, method, accountNumber string) error {
	g.Log.Info("payout-stub", fmt.Sprintf("disbursed %s via %s", amount.StringFixed(2), method), "Disburse", reference)
	return nil
}
