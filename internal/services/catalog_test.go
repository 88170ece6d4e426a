package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

type fakeVenueRepo struct {
	byID       map[string]*domain.EventVenue
	referenced map[string]bool
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{byID: map[string]*domain.EventVenue{}, referenced: map[string]bool{}}
}

func (f *fakeVenueRepo) Create(ctx context.Context, v *domain.EventVenue) error {
	v.ID = fmt.Sprintf("venue-%d", len(f.byID)+1)
	f.byID[v.ID] = v
	return nil
}

func (f *fakeVenueRepo) GetByID(ctx context.Context, id string) (*domain.EventVenue, error) {
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventVenue, int, error) {
	out := make([]*domain.EventVenue, 0, len(f.byID))
	for _, v := range f.byID {
		out = append(out, v)
	}
	return out, len(out), nil
}

func (f *fakeVenueRepo) Update(ctx context.Context, v *domain.EventVenue) error {
	if _, ok := f.byID[v.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[v.ID] = v
	return nil
}

func (f *fakeVenueRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	if f.referenced[id] {
		return domain.ErrReferenced
	}
	delete(f.byID, id)
	return nil
}

type fakeEventTypeRepo struct {
	byID map[string]*domain.EventType
}

func (f *fakeEventTypeRepo) Create(ctx context.Context, t *domain.EventType) error {
	for _, existing := range f.byID {
		if existing.Name == t.Name {
			return domain.NewValidationError("name", "event type already exists")
		}
	}
	t.ID = fmt.Sprintf("type-%d", len(f.byID)+1)
	f.byID[t.ID] = t
	return nil
}

func (f *fakeEventTypeRepo) GetByID(ctx context.Context, id string) (*domain.EventType, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventTypeRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventType, int, error) {
	out := make([]*domain.EventType, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (f *fakeEventTypeRepo) Update(ctx context.Context, t *domain.EventType) error {
	if _, ok := f.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeEventTypeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func newTestCatalog() (*catalogService, *fakeVenueRepo, *fakeEventTypeRepo) {
	venues := newFakeVenueRepo()
	types := &fakeEventTypeRepo{byID: map[string]*domain.EventType{}}
	svc := NewCatalogService(venues, types, 5*time.Second).(*catalogService)
	svc.now = func() time.Time { return testNow }
	return svc, venues, types
}

func ptr[T any](v T) *T { return &v }

func TestCatalogService_CreateVenue(t *testing.T) {
	tests := []struct {
		name      string
		actor     *domain.Actor
		venue     domain.EventVenue
		wantErr   error
		wantField string
	}{
		{name: "admin creates", actor: testAdmin, venue: domain.EventVenue{Name: "Hall", Latitude: ptr(55.75), Longitude: ptr(37.61)}},
		{name: "anonymous", venue: domain.EventVenue{Name: "Hall"}, wantErr: domain.ErrUnauthenticated},
		{name: "not admin", actor: testUser, venue: domain.EventVenue{Name: "Hall"}, wantErr: domain.ErrForbidden},
		{name: "blank name", actor: testAdmin, venue: domain.EventVenue{Name: "  "}, wantErr: domain.ErrInvalidInput, wantField: "name"},
		{name: "latitude out of range", actor: testAdmin, venue: domain.EventVenue{Name: "Hall", Latitude: ptr(91.0)}, wantErr: domain.ErrInvalidInput, wantField: "latitude"},
		{name: "longitude out of range", actor: testAdmin, venue: domain.EventVenue{Name: "Hall", Longitude: ptr(-181.0)}, wantErr: domain.ErrInvalidInput, wantField: "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, venues, _ := newTestCatalog()
			v := tt.venue
			err := svc.CreateVenue(context.Background(), tt.actor, &v)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantField != "" {
					var ve *domain.ValidationError
					require.ErrorAs(t, err, &ve)
					assert.Equal(t, tt.wantField, ve.Field)
				}
				assert.Empty(t, venues.byID)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, v.ID)
			assert.Equal(t, testNow, v.CreatedAt)
		})
	}
}

func TestCatalogService_Venues(t *testing.T) {
	ctx := context.Background()
	svc, venues, _ := newTestCatalog()
	v := &domain.EventVenue{Name: "Hall"}
	require.NoError(t, svc.CreateVenue(ctx, testAdmin, v))

	got, err := svc.GetVenue(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hall", got.Name)

	_, err = svc.GetVenue(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := svc.ListVenues(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	err = svc.UpdateVenue(ctx, testAdmin, &domain.EventVenue{ID: "missing", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	venues.referenced[v.ID] = true
	assert.ErrorIs(t, svc.DeleteVenue(ctx, testAdmin, v.ID), domain.ErrReferenced)
	assert.ErrorIs(t, svc.DeleteVenue(ctx, testUser, v.ID), domain.ErrForbidden)

	venues.referenced[v.ID] = false
	require.NoError(t, svc.DeleteVenue(ctx, testAdmin, v.ID))
	assert.ErrorIs(t, svc.DeleteVenue(ctx, testAdmin, v.ID), domain.ErrNotFound)
}

func TestCatalogService_EventTypes(t *testing.T) {
	ctx := context.Background()
	svc, _, types := newTestCatalog()

	et := &domain.EventType{Name: "Conference"}
	require.NoError(t, svc.CreateEventType(ctx, testAdmin, et))

	err := svc.CreateEventType(ctx, testAdmin, &domain.EventType{Name: "Conference"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	assert.ErrorIs(t, svc.CreateEventType(ctx, testUser, &domain.EventType{Name: "Meetup"}), domain.ErrForbidden)

	et.Name = "Conf"
	require.NoError(t, svc.UpdateEventType(ctx, testAdmin, et))
	got, err := svc.GetEventType(ctx, et.ID)
	require.NoError(t, err)
	assert.Equal(t, "Conf", got.Name)

	require.NoError(t, svc.DeleteEventType(ctx, testAdmin, et.ID))
	assert.Empty(t, types.byID)
	_, err = svc.GetEventType(ctx, et.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
