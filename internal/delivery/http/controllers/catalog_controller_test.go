package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

func TestCatalogController_Venues(t *testing.T) {
	fake := newFakeCatalog()
	ctrl := NewCatalogController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.CreateVenue(rr, newRequest(http.MethodPost, "/event-venues", `{"name":"Hall","address":"Main st 1","latitude":55.75,"longitude":37.61}`, adminActor, nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created domain.EventVenue
	require.Nil(t, decodeEnvelope(t, rr, &created))
	assert.Equal(t, "venue-created", created.ID)
	assert.Same(t, adminActor, fake.lastActor)

	rr = httptest.NewRecorder()
	ctrl.UpdateVenue(rr, newRequest(http.MethodPut, "/event-venues/venue-created", `{"name":"Big Hall"}`, adminActor, map[string]string{"venueID": "venue-created"}))
	require.Equal(t, http.StatusOK, rr.Code)
	var updated domain.EventVenue
	require.Nil(t, decodeEnvelope(t, rr, &updated))
	assert.Equal(t, "Big Hall", updated.Name)
	assert.Nil(t, updated.Address)

	rr = httptest.NewRecorder()
	ctrl.ListVenues(rr, newRequest(http.MethodGet, "/event-venues", "", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list helpers.ListResponse[*domain.EventVenue]
	require.Nil(t, decodeEnvelope(t, rr, &list))
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Pagination.Total)

	rr = httptest.NewRecorder()
	ctrl.DeleteVenue(rr, newRequest(http.MethodDelete, "/event-venues/venue-created", "", adminActor, map[string]string{"venueID": "venue-created"}))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.GetVenue(rr, newRequest(http.MethodGet, "/event-venues/venue-created", "", nil, map[string]string{"venueID": "venue-created"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCatalogController_VenueErrors(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		call       func(c *CatalogController, w http.ResponseWriter)
		wantStatus int
		wantField  string
	}{
		{
			name: "latitude out of range",
			call: func(c *CatalogController, w http.ResponseWriter) {
				c.CreateVenue(w, newRequest(http.MethodPost, "/event-venues", `{"name":"Hall","latitude":91}`, adminActor, nil))
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "latitude",
		},
		{
			name:    "not an admin",
			fakeErr: domain.ErrForbidden,
			call: func(c *CatalogController, w http.ResponseWriter) {
				c.CreateVenue(w, newRequest(http.MethodPost, "/event-venues", `{"name":"Hall"}`, userActor, nil))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "update missing venue",
			call: func(c *CatalogController, w http.ResponseWriter) {
				c.UpdateVenue(w, newRequest(http.MethodPut, "/event-venues/nope", `{"name":"Hall"}`, adminActor, map[string]string{"venueID": "nope"}))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "venue still used",
			fakeErr: domain.ErrReferenced,
			call: func(c *CatalogController, w http.ResponseWriter) {
				c.DeleteVenue(w, newRequest(http.MethodDelete, "/event-venues/v-1", "", adminActor, map[string]string{"venueID": "v-1"}))
			},
			wantStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeCatalog()
			fake.err = tt.fakeErr
			rr := httptest.NewRecorder()

			tt.call(NewCatalogController(testLogger, fake), rr)

			require.Equal(t, tt.wantStatus, rr.Code)
			apiErr := decodeEnvelope(t, rr, nil)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantField, apiErr.Field)
		})
	}
}

func TestCatalogController_EventTypes(t *testing.T) {
	fake := newFakeCatalog()
	ctrl := NewCatalogController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.CreateEventType(rr, newRequest(http.MethodPost, "/event-types", `{"name":"Concert"}`, adminActor, nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.UpdateEventType(rr, newRequest(http.MethodPut, "/event-types/type-created", `{"name":"Live concert"}`, adminActor, map[string]string{"typeID": "type-created"}))
	require.Equal(t, http.StatusOK, rr.Code)
	var et domain.EventType
	require.Nil(t, decodeEnvelope(t, rr, &et))
	assert.Equal(t, "Live concert", et.Name)

	rr = httptest.NewRecorder()
	ctrl.ListEventTypes(rr, newRequest(http.MethodGet, "/event-types", "", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.CreateEventType(rr, newRequest(http.MethodPost, "/event-types", `{"name":""}`, adminActor, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "name", decodeEnvelope(t, rr, nil).Field)

	fake.err = domain.NewValidationError("name", "event type with this name already exists")
	rr = httptest.NewRecorder()
	ctrl.CreateEventType(rr, newRequest(http.MethodPost, "/event-types", `{"name":"Concert"}`, adminActor, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeEnvelope(t, rr, nil)
	assert.Equal(t, "name", apiErr.Field)
	assert.Contains(t, apiErr.Message, "already exists")

	fake.err = nil
	rr = httptest.NewRecorder()
	ctrl.DeleteEventType(rr, newRequest(http.MethodDelete, "/event-types/type-created", "", adminActor, map[string]string{"typeID": "type-created"}))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = httptest.NewRecorder()
	ctrl.GetEventType(rr, newRequest(http.MethodGet, "/event-types/type-created", "", nil, map[string]string{"typeID": "type-created"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
