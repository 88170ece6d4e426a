package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func newTestReconciler(regs *fakeRegistrationRepo, events *fakeEventRepo, gateways domain.PaymentGatewayFactory, n *recordingNotifier) *paymentReconciler {
	r := NewPaymentReconciler(regs, events, gateways,
		domain.PaymentSettings{BillLifetime: 30 * time.Minute, CallTimeout: time.Second},
		n, discardLogger(),
	).(*paymentReconciler)
	r.now = func() time.Time { return testNow }
	return r
}

func seedPaid(regs *fakeRegistrationRepo, code, userID string, status domain.PaymentStatus, createdAt time.Time) {
	s := status
	regs.add(&domain.Registration{
		Code: code, EventID: "ev-1", UserID: userID, InvitingUserID: userID,
		IsInvitationAccepted: true, PaymentStatus: &s, CreatedAt: createdAt,
	})
}

func TestPaymentReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPaid))
	regs := newFakeRegistrationRepo(events, testUsers())
	seedPaid(regs, "0000000001", "user-1", domain.PaymentWaiting, testNow)
	seedPaid(regs, "0000000002", "user-2", domain.PaymentWaiting, testNow)
	seedPaid(regs, "0000000003", "user-3", domain.PaymentWaiting, testNow)

	gw := newFakeGateway()
	gw.statuses["0000000001"] = domain.PaymentPaid
	gw.statuses["0000000002"] = domain.PaymentExpired
	gw.statuses["0000000003"] = domain.PaymentWaiting
	n := &recordingNotifier{}

	res, err := newTestReconciler(regs, events, gw.factory(), n).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, []string{"0000000002"}, gw.cancelled)
	assert.Equal(t, []string{
		"registration 0000000001: payment status WAITING -> PAID",
		"registration 0000000002: payment status WAITING -> EXPIRED",
	}, res.Transitions)
	assert.Equal(t, "registration 0000000001: payment status WAITING -> PAID\n"+
		"registration 0000000002: payment status WAITING -> EXPIRED\n"+
		"registration 0000000002: bill rejected", res.Summary())

	assert.Equal(t, domain.PaymentPaid, *regs.get("ev-1", "user-1").PaymentStatus)
	expired := regs.get("ev-1", "user-2")
	require.NotNil(t, expired, "terminal rows are kept")
	assert.Equal(t, domain.PaymentExpired, *expired.PaymentStatus)

	require.Len(t, n.sent, 1)
	assert.Equal(t, domain.NotifyRegistrationConfirmed, n.sent[0].Kind)
	assert.Equal(t, "Event ev-1", n.sent[0].EventName)
	assert.Equal(t, []string{"user-1"}, n.sent[0].RecipientUserIDs)
}

func TestPaymentReconciler_NoGateway(t *testing.T) {
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPaid))
	regs := newFakeRegistrationRepo(events, testUsers())
	seedPaid(regs, "0000000001", "user-1", domain.PaymentWaiting, testNow)

	for name, factory := range map[string]domain.PaymentGatewayFactory{
		"nil factory": nil,
		"missing key": unavailableGateway,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := newTestReconciler(regs, events, factory, &recordingNotifier{}).Reconcile(context.Background())
			require.NoError(t, err)
			assert.True(t, res.Idle)
			assert.Zero(t, res.Updated)
			assert.Equal(t, "no payments to handle", res.Summary())
			assert.Equal(t, domain.PaymentWaiting, *regs.get("ev-1", "user-1").PaymentStatus)
		})
	}
}

func TestPaymentReconciler_NothingPending(t *testing.T) {
	events := newFakeEventRepo()
	regs := newFakeRegistrationRepo(events, nil)
	gw := newFakeGateway()

	res, err := newTestReconciler(regs, events, gw.factory(), &recordingNotifier{}).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no payments to handle", res.Summary())
}

func TestPaymentReconciler_NoChanges(t *testing.T) {
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPaid))
	regs := newFakeRegistrationRepo(events, testUsers())
	seedPaid(regs, "0000000001", "user-1", domain.PaymentWaiting, testNow)
	gw := newFakeGateway()
	gw.statuses["0000000001"] = domain.PaymentWaiting

	res, err := newTestReconciler(regs, events, gw.factory(), &recordingNotifier{}).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checked)
	assert.Equal(t, "waiting for new payment statuses", res.Summary())
}

func TestPaymentReconciler_IsolatesRowErrors(t *testing.T) {
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPaid))
	regs := newFakeRegistrationRepo(events, testUsers())
	seedPaid(regs, "0000000001", "user-1", domain.PaymentWaiting, testNow)
	seedPaid(regs, "0000000002", "user-2", domain.PaymentCreated, testNow)
	gw := newFakeGateway()
	gw.statusErr["0000000001"] = errors.New("timeout")
	gw.statuses["0000000002"] = domain.PaymentWaiting

	res, err := newTestReconciler(regs, events, gw.factory(), &recordingNotifier{}).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, domain.PaymentWaiting, *regs.get("ev-1", "user-2").PaymentStatus)
}

func TestPaymentReconciler_RowDeletedDuringRun(t *testing.T) {
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPaid))
	regs := newFakeRegistrationRepo(events, testUsers())
	seedPaid(regs, "0000000001", "user-1", domain.PaymentWaiting, testNow)
	gw := &deletingGateway{fakeGateway: newFakeGateway(), regs: regs}
	gw.statuses["0000000001"] = domain.PaymentPaid

	res, err := newTestReconciler(regs, events, func() (domain.PaymentGateway, error) { return gw, nil }, &recordingNotifier{}).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Failed)
	assert.Equal(t, "waiting for new payment statuses", res.Summary())
}

// deletingGateway removes the row while its status is being checked.
type deletingGateway struct {
	*fakeGateway
	regs *fakeRegistrationRepo
}

func (g *deletingGateway) CheckStatus(ctx context.Context, billID string) (domain.PaymentStatus, error) {
	_, _ = g.regs.Delete(ctx, "ev-1", "user-1", false)
	return g.fakeGateway.CheckStatus(ctx, billID)
}

func TestPaymentReconciler_ExpiresUnknownStaleBill(t *testing.T) {
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPaid))
	regs := newFakeRegistrationRepo(events, testUsers())
	seedPaid(regs, "0000000001", "user-1", domain.PaymentCreated, testNow.Add(-time.Hour))
	seedPaid(regs, "0000000002", "user-2", domain.PaymentCreated, testNow.Add(-time.Minute))
	gw := newFakeGateway()
	gw.statusErr["0000000001"] = domain.ErrNotFound
	gw.statusErr["0000000002"] = domain.ErrNotFound

	res, err := newTestReconciler(regs, events, gw.factory(), &recordingNotifier{}).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, domain.PaymentExpired, *regs.get("ev-1", "user-1").PaymentStatus)
	assert.Equal(t, domain.PaymentCreated, *regs.get("ev-1", "user-2").PaymentStatus)
}
