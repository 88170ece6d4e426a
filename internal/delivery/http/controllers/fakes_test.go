package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	adminActor = &domain.Actor{UserID: "admin-1", Email: "admin@example.com", IsStaff: true}
	userActor  = &domain.Actor{UserID: "user-1", Email: "ann@example.com"}
)

// newRequest builds a request carrying actor (nil for anonymous) and the given path values.
func newRequest(method, target, body string, actor *domain.Actor, pathValues map[string]string) *http.Request {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

// decodeEnvelope decodes the response envelope and, when data is non-nil, its data into data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "response must be valid JSON envelope")
	if data != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err        error
	events     []*domain.Event
	total      int
	visitors   int
	lastActor  *domain.Actor
	lastEvent  *domain.Event
	lastID     string
	lastVar    domain.Variant
	lastPatch  domain.EventPatch
	lastFilter domain.EventFilter
	lastParams domain.PaginationParams
	deleted    bool
}

func (f *fakeEventService) CreateEvent(_ context.Context, actor *domain.Actor, e *domain.Event) (*domain.EventDetails, error) {
	f.lastActor = actor
	f.lastEvent = e
	if f.err != nil {
		return nil, f.err
	}
	e.ID = "ev-created"
	e.InvitationCode = "secret-code"
	return domain.NewEventDetails(e, 0), nil
}

func (f *fakeEventService) GetEvent(_ context.Context, actor *domain.Actor, variant domain.Variant, id string) (*domain.EventDetails, error) {
	f.lastActor, f.lastVar, f.lastID = actor, variant, id
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewEventDetails(&domain.Event{ID: id, Variant: variant, Name: "Meetup", InvitationCode: "secret-code"}, f.visitors), nil
}

func (f *fakeEventService) ListEvents(_ context.Context, actor *domain.Actor, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastActor, f.lastFilter, f.lastParams = actor, filter, params
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, actor *domain.Actor, variant domain.Variant, id string, patch domain.EventPatch) (*domain.EventDetails, error) {
	f.lastActor, f.lastVar, f.lastID, f.lastPatch = actor, variant, id, patch
	if f.err != nil {
		return nil, f.err
	}
	e := &domain.Event{ID: id, Variant: variant, Name: "Meetup"}
	patch.Apply(e)
	return domain.NewEventDetails(e, f.visitors), nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, actor *domain.Actor, variant domain.Variant, id string) error {
	f.lastActor, f.lastVar, f.lastID = actor, variant, id
	if f.err != nil {
		return f.err
	}
	f.deleted = true
	return nil
}

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	err        error
	reg        *domain.Registration
	code       string
	guests     []*domain.Guest
	lastActor  *domain.Actor
	lastVar    domain.Variant
	lastEvent  string
	lastCode   string
	lastTarget string
	lastParams domain.PaginationParams
	calls      []string
}

func (f *fakeRegistrationService) record(name string, actor *domain.Actor, variant domain.Variant, eventID string) {
	f.calls = append(f.calls, name)
	f.lastActor, f.lastVar, f.lastEvent = actor, variant, eventID
}

func (f *fakeRegistrationService) Register(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID, invitationCode string) (*domain.Registration, error) {
	f.record("Register", actor, variant, eventID)
	f.lastCode = invitationCode
	if f.err != nil {
		return nil, f.err
	}
	return f.reg, nil
}

func (f *fakeRegistrationService) CancelRegistration(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID string) error {
	f.record("CancelRegistration", actor, variant, eventID)
	return f.err
}

func (f *fakeRegistrationService) Invite(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID, targetUserID string) (*domain.Registration, error) {
	f.record("Invite", actor, variant, eventID)
	f.lastTarget = targetUserID
	if f.err != nil {
		return nil, f.err
	}
	return f.reg, nil
}

func (f *fakeRegistrationService) AcceptInvitation(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID string) (*domain.Registration, error) {
	f.record("AcceptInvitation", actor, variant, eventID)
	if f.err != nil {
		return nil, f.err
	}
	return f.reg, nil
}

func (f *fakeRegistrationService) RevokeInvitation(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID string) error {
	f.record("RevokeInvitation", actor, variant, eventID)
	return f.err
}

func (f *fakeRegistrationService) GetInvitationCode(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID string) (string, error) {
	f.record("GetInvitationCode", actor, variant, eventID)
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

func (f *fakeRegistrationService) ListGuests(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID string) ([]*domain.Guest, error) {
	f.record("ListGuests", actor, variant, eventID)
	if f.err != nil {
		return nil, f.err
	}
	return f.guests, nil
}

func (f *fakeRegistrationService) ListRegistrations(_ context.Context, actor *domain.Actor, variant domain.Variant, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	f.record("ListRegistrations", actor, variant, eventID)
	f.lastParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	if f.reg == nil {
		return nil, 0, nil
	}
	return []*domain.Registration{f.reg}, 1, nil
}

// fakeCatalogService keeps venues and event types in maps keyed by id.
type fakeCatalogService struct {
	err       error
	venues    map[string]*domain.EventVenue
	types     map[string]*domain.EventType
	lastActor *domain.Actor
}

func newFakeCatalog() *fakeCatalogService {
	return &fakeCatalogService{venues: map[string]*domain.EventVenue{}, types: map[string]*domain.EventType{}}
}

func (f *fakeCatalogService) CreateVenue(_ context.Context, actor *domain.Actor, v *domain.EventVenue) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	v.ID = "venue-created"
	f.venues[v.ID] = v
	return nil
}

func (f *fakeCatalogService) GetVenue(_ context.Context, id string) (*domain.EventVenue, error) {
	if v, ok := f.venues[id]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalogService) ListVenues(_ context.Context, _ domain.PaginationParams) ([]*domain.EventVenue, int, error) {
	out := make([]*domain.EventVenue, 0, len(f.venues))
	for _, v := range f.venues {
		out = append(out, v)
	}
	return out, len(out), f.err
}

func (f *fakeCatalogService) UpdateVenue(_ context.Context, actor *domain.Actor, v *domain.EventVenue) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	if _, ok := f.venues[v.ID]; !ok {
		return domain.ErrNotFound
	}
	f.venues[v.ID] = v
	return nil
}

func (f *fakeCatalogService) DeleteVenue(_ context.Context, actor *domain.Actor, id string) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	delete(f.venues, id)
	return nil
}

func (f *fakeCatalogService) CreateEventType(_ context.Context, actor *domain.Actor, t *domain.EventType) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	t.ID = "type-created"
	f.types[t.ID] = t
	return nil
}

func (f *fakeCatalogService) GetEventType(_ context.Context, id string) (*domain.EventType, error) {
	if t, ok := f.types[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalogService) ListEventTypes(_ context.Context, _ domain.PaginationParams) ([]*domain.EventType, int, error) {
	out := make([]*domain.EventType, 0, len(f.types))
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, len(out), f.err
}

func (f *fakeCatalogService) UpdateEventType(_ context.Context, actor *domain.Actor, t *domain.EventType) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	if _, ok := f.types[t.ID]; !ok {
		return domain.ErrNotFound
	}
	f.types[t.ID] = t
	return nil
}

func (f *fakeCatalogService) DeleteEventType(_ context.Context, actor *domain.Actor, id string) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	delete(f.types, id)
	return nil
}
