package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventhub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	// takenCodes makes Create fail with ErrDuplicateCode for these invitation codes.
	takenCodes map[string]bool
	// onDelete runs after an event is removed, mimicking the registration cascade.
	onDelete func(id string)
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1, takenCodes: map[string]bool{}}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.takenCodes[e.InvitationCode] {
		return domain.ErrDuplicateCode
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, variant domain.Variant, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok && e.Variant == variant {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.Variant == filter.Variant {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, variant domain.Variant, id string) error {
	f.mu.Lock()
	e, ok := f.byID[id]
	if !ok || e.Variant != variant {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.mu.Unlock()
	if f.onDelete != nil {
		f.onDelete(id)
	}
	return nil
}

func (f *fakeEventRepo) ListStartingOn(ctx context.Context, day time.Time) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	y, m, d := day.Date()
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		ey, em, ed := e.StartDatetime.In(day.Location()).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeRegistrationRepo is an in-memory RegistrationRepository keyed by (event, user).
type fakeRegistrationRepo struct {
	mu        sync.Mutex
	byKey     map[string]*domain.Registration
	users     map[string]*domain.User
	events    *fakeEventRepo
	nextID    int
	setPayErr error
	// takenCodes makes Create fail with ErrDuplicateCode for these codes.
	takenCodes  map[string]bool
	createCalls int
}

func newFakeRegistrationRepo(events *fakeEventRepo, users map[string]*domain.User) *fakeRegistrationRepo {
	r := &fakeRegistrationRepo{
		byKey:      make(map[string]*domain.Registration),
		users:      users,
		events:     events,
		nextID:     1,
		takenCodes: map[string]bool{},
	}
	if events != nil {
		events.onDelete = r.deleteEvent
	}
	return r
}

func regKey(eventID, userID string) string { return eventID + ":" + userID }

func (f *fakeRegistrationRepo) add(reg *domain.Registration) *domain.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg.ID == "" {
		reg.ID = fmt.Sprintf("reg-%d", f.nextID)
		f.nextID++
	}
	f.byKey[regKey(reg.EventID, reg.UserID)] = reg
	return reg
}

func (f *fakeRegistrationRepo) get(eventID, userID string) *domain.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byKey[regKey(eventID, userID)]
}

func (f *fakeRegistrationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byKey)
}

func (f *fakeRegistrationRepo) deleteEvent(eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.byKey {
		if r.EventID == eventID {
			delete(f.byKey, k)
		}
	}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.takenCodes[reg.Code] {
		return domain.ErrDuplicateCode
	}
	if _, ok := f.byKey[regKey(reg.EventID, reg.UserID)]; ok {
		return domain.ErrAlreadyRegistered
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	cp := *reg
	f.byKey[regKey(reg.EventID, reg.UserID)] = &cp
	return nil
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	if r := f.get(eventID, userID); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) Accept(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byKey[regKey(eventID, userID)]
	if !ok || r.IsInvitationAccepted {
		return nil, domain.ErrNotFound
	}
	r.IsInvitationAccepted = true
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationRepo) findByID(id string) *domain.Registration {
	for _, r := range f.byKey {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeRegistrationRepo) SetPayment(ctx context.Context, id string, status domain.PaymentStatus, link *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setPayErr != nil && link != nil {
		return f.setPayErr
	}
	r := f.findByID(id)
	if r == nil {
		return domain.ErrNotFound
	}
	s := status
	r.PaymentStatus = &s
	r.PaymentLink = link
	return nil
}

func (f *fakeRegistrationRepo) Reopen(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.findByID(id)
	if r == nil {
		return domain.ErrNotFound
	}
	r.IsInvitationAccepted = false
	r.PaymentStatus = nil
	r.PaymentLink = nil
	return nil
}

func (f *fakeRegistrationRepo) UpdatePaymentStatus(ctx context.Context, code string, status domain.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byKey {
		if r.Code == code {
			s := status
			r.PaymentStatus = &s
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, eventID, userID string, pendingOnly bool) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := regKey(eventID, userID)
	r, ok := f.byKey[k]
	if !ok || (pendingOnly && r.IsInvitationAccepted) {
		return nil, domain.ErrNotFound
	}
	delete(f.byKey, k)
	return r, nil
}

func (f *fakeRegistrationRepo) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.byKey {
		if r.ID == id {
			delete(f.byKey, k)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRegistrationRepo) confirmed(eventID string, requirePaid bool) []*domain.Registration {
	out := make([]*domain.Registration, 0)
	for _, r := range f.byKey {
		if r.EventID != eventID || !r.IsInvitationAccepted {
			continue
		}
		if requirePaid && (r.PaymentStatus == nil || *r.PaymentStatus != domain.PaymentPaid) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (f *fakeRegistrationRepo) ListGuests(ctx context.Context, eventID string, requirePaid bool) ([]*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	guests := make([]*domain.Guest, 0)
	for _, r := range f.confirmed(eventID, requirePaid) {
		g := &domain.Guest{RegistrationCode: r.Code, UserID: r.UserID}
		if u, ok := f.users[r.UserID]; ok {
			g.Email, g.FirstName, g.LastName = u.Email, u.FirstName, u.LastName
		}
		guests = append(guests, g)
	}
	return guests, nil
}

func (f *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*domain.Registration, 0)
	for _, r := range f.byKey {
		if r.EventID == eventID {
			cp := *r
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeRegistrationRepo) CountGuests(ctx context.Context, eventID string, requirePaid bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmed(eventID, requirePaid)), nil
}

func (f *fakeRegistrationRepo) ListPendingPayments(ctx context.Context) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Registration, 0)
	for _, r := range f.byKey {
		if r.PaymentStatus != nil && r.PaymentStatus.Pending() {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// fakeUserRepo serves users from a map.
type fakeUserRepo struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

// fakeGateway records calls and answers from preset statuses.
type fakeGateway struct {
	mu        sync.Mutex
	statuses  map[string]domain.PaymentStatus
	statusErr map[string]error
	createErr error
	cancelErr error
	created   []domain.BillRequest
	cancelled []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]domain.PaymentStatus{}, statusErr: map[string]error{}}
}

func (g *fakeGateway) factory() domain.PaymentGatewayFactory {
	return func() (domain.PaymentGateway, error) { return g, nil }
}

func (g *fakeGateway) CreateBill(ctx context.Context, req domain.BillRequest) (*domain.Bill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	return &domain.Bill{BillID: req.BillID, PayURL: "https://pay.example/form?invoice_uid=" + req.BillID}, nil
}

func (g *fakeGateway) CheckStatus(ctx context.Context, billID string) (domain.PaymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.statusErr[billID]; err != nil {
		return "", err
	}
	return g.statuses[billID], nil
}

func (g *fakeGateway) CancelBill(ctx context.Context, billID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, billID)
	return nil
}

func unavailableGateway() (domain.PaymentGateway, error) {
	return nil, domain.ErrPaymentUnavailable
}

// recordingNotifier keeps every notification it is handed.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Kind)
	}
	return out
}
