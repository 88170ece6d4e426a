package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestReminderService_SendReminders(t *testing.T) {
	ctx := context.Background()

	inFive := testEvent("ev-5", domain.VariantPublic)
	inFive.StartDatetime = testNow.AddDate(0, 0, 5).Add(3 * time.Hour)
	inOne := testEvent("ev-1", domain.VariantPaid)
	inOne.StartDatetime = testNow.AddDate(0, 0, 1)
	inTwo := testEvent("ev-2", domain.VariantPublic)
	inTwo.StartDatetime = testNow.AddDate(0, 0, 2)

	events := newFakeEventRepo(inFive, inOne, inTwo)
	regs := newFakeRegistrationRepo(events, testUsers())
	regs.add(&domain.Registration{Code: "0000000001", EventID: "ev-5", UserID: "user-1", IsInvitationAccepted: true})
	regs.add(&domain.Registration{Code: "0000000002", EventID: "ev-5", UserID: "user-2", IsInvitationAccepted: false})
	regs.add(&domain.Registration{Code: "0000000003", EventID: "ev-2", UserID: "user-1", IsInvitationAccepted: true})
	seedPaid(regs, "0000000004", "user-2", domain.PaymentPaid, testNow)
	seedPaid(regs, "0000000005", "user-3", domain.PaymentWaiting, testNow)

	n := &recordingNotifier{}
	svc := NewReminderService(events, regs, n, []int{5, 3, 1}, discardLogger())

	sent, err := svc.SendReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, n.sent, 2)

	assert.Equal(t, domain.Notification{
		Kind:             domain.NotifyEventReminder,
		Variant:          domain.VariantPublic,
		EventID:          "ev-5",
		EventName:        "Event ev-5",
		RegistrationCode: "0000000001",
		DaysBefore:       5,
		Recipients:       []string{"ann@example.com"},
	}, n.sent[0])
	assert.Equal(t, "ev-1", n.sent[1].EventID)
	assert.Equal(t, 1, n.sent[1].DaysBefore)
	assert.Equal(t, []string{"bob@example.com"}, n.sent[1].Recipients)
}

func TestReminderService_NothingScheduled(t *testing.T) {
	events := newFakeEventRepo(testEvent("ev-1", domain.VariantPublic))
	regs := newFakeRegistrationRepo(events, testUsers())
	n := &recordingNotifier{}

	sent, err := NewReminderService(events, regs, n, []int{5, 3, 1}, discardLogger()).SendReminders(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, n.sent)
}
