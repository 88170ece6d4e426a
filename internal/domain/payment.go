package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BillRequest describes a charge to create at the payment gateway.
type BillRequest struct {
	BillID   string
	Amount   decimal.Decimal
	Lifetime time.Duration
	Comment  string
}

// Bill is the gateway's answer to a bill creation.
type Bill struct {
	BillID string
	PayURL string
}

// PaymentGateway is a bill-based payment provider keyed by the registration code.
type PaymentGateway interface {
	CreateBill(ctx context.Context, req BillRequest) (*Bill, error)
	CheckStatus(ctx context.Context, billID string) (PaymentStatus, error)
	CancelBill(ctx context.Context, billID string) error
}

// PaymentGatewayFactory builds the configured gateway.
// It returns ErrPaymentUnavailable when no credential is configured.
type PaymentGatewayFactory func() (PaymentGateway, error)

// PaymentSettings are the gateway-independent payment options.
type PaymentSettings struct {
	BillLifetime      time.Duration
	SuccessPaymentURL string
	CallTimeout       time.Duration
}

// ReconcileResult reports one reconciliation run.
type ReconcileResult struct {
	Checked     int
	Updated     int
	Rejected    int
	Failed      int
	Transitions []string
	Rejections  []string
	// Idle is set when the run had nothing to do: no gateway or no pending rows.
	Idle bool
}

// Summary returns the human-readable result text.
func (r *ReconcileResult) Summary() string {
	if r.Idle {
		return "no payments to handle"
	}
	lines := append(append([]string{}, r.Transitions...), r.Rejections...)
	if len(lines) == 0 {
		return "waiting for new payment statuses"
	}
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}

// PaymentReconciler syncs local payment status with the gateway.
type PaymentReconciler interface {
	Reconcile(ctx context.Context) (*ReconcileResult, error)
}
