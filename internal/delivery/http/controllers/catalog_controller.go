package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// VenueRequest is the request body for creating or replacing a venue.
type VenueRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Address   *string  `json:"address" validate:"omitempty,max=500"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// EventTypeRequest is the request body for creating or renaming an event type.
type EventTypeRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// VenueSuccessResponse is the success envelope for single-venue responses.
type VenueSuccessResponse struct {
	Data  *domain.EventVenue `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// VenueListSuccessResponse is the success envelope for venue listings.
type VenueListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.EventVenue] `json:"data"`
	Error *helpers.APIError                        `json:"error"`
}

// EventTypeSuccessResponse is the success envelope for single event type responses.
type EventTypeSuccessResponse struct {
	Data  *domain.EventType `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventTypeListSuccessResponse is the success envelope for event type listings.
type EventTypeListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.EventType] `json:"data"`
	Error *helpers.APIError                       `json:"error"`
}

// CatalogController serves /event-venues and /event-types.
type CatalogController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewCatalogController(logger *slog.Logger, svc domain.CatalogService) *CatalogController {
	return &CatalogController{Logger: logger, Service: svc}
}

// ListVenues godoc
// @Summary List venues
// @Tags catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} controllers.VenueListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event-venues [get]
func (c *CatalogController) ListVenues(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	venues, total, err := c.Service.ListVenues(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(venues, params, total))
}

// CreateVenue godoc
// @Summary Create a venue
// @Description Admin only.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venue body VenueRequest true "Venue data"
// @Success 201 {object} controllers.VenueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /event-venues [post]
func (c *CatalogController) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue := &domain.EventVenue{Name: req.Name, Address: req.Address, Latitude: req.Latitude, Longitude: req.Longitude}
	if err := c.Service.CreateVenue(r.Context(), middleware.ActorFromContext(r.Context()), venue); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// GetVenue godoc
// @Summary Get a venue
// @Tags catalog
// @Produce json
// @Param venueID path string true "Venue ID (UUID)"
// @Success 200 {object} controllers.VenueSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event-venues/{venueID} [get]
func (c *CatalogController) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := c.Service.GetVenue(r.Context(), r.PathValue("venueID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// UpdateVenue godoc
// @Summary Replace a venue
// @Description Admin only.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Param venue body VenueRequest true "Venue data"
// @Success 200 {object} controllers.VenueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event-venues/{venueID} [put]
func (c *CatalogController) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue := &domain.EventVenue{
		ID:        r.PathValue("venueID"),
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := c.Service.UpdateVenue(r.Context(), middleware.ActorFromContext(r.Context()), venue); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.GetVenue(w, r)
}

// DeleteVenue godoc
// @Summary Delete a venue
// @Description Admin only. Fails with 409 while an event is held at the venue.
// @Tags catalog
// @Security BearerAuth
// @Param venueID path string true "Venue ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /event-venues/{venueID} [delete]
func (c *CatalogController) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteVenue(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("venueID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEventTypes godoc
// @Summary List event types
// @Tags catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} controllers.EventTypeListSuccessResponse
// @Router /event-types [get]
func (c *CatalogController) ListEventTypes(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	types, total, err := c.Service.ListEventTypes(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(types, params, total))
}

// CreateEventType godoc
// @Summary Create an event type
// @Description Admin only. Names are unique.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type body EventTypeRequest true "Event type"
// @Success 201 {object} controllers.EventTypeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /event-types [post]
func (c *CatalogController) CreateEventType(w http.ResponseWriter, r *http.Request) {
	var req EventTypeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	et := &domain.EventType{Name: req.Name}
	if err := c.Service.CreateEventType(r.Context(), middleware.ActorFromContext(r.Context()), et); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, et)
}

// GetEventType godoc
// @Summary Get an event type
// @Tags catalog
// @Produce json
// @Param typeID path string true "Event type ID (UUID)"
// @Success 200 {object} controllers.EventTypeSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event-types/{typeID} [get]
func (c *CatalogController) GetEventType(w http.ResponseWriter, r *http.Request) {
	et, err := c.Service.GetEventType(r.Context(), r.PathValue("typeID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, et)
}

// UpdateEventType godoc
// @Summary Rename an event type
// @Description Admin only.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param typeID path string true "Event type ID (UUID)"
// @Param type body EventTypeRequest true "Event type"
// @Success 200 {object} controllers.EventTypeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event-types/{typeID} [put]
func (c *CatalogController) UpdateEventType(w http.ResponseWriter, r *http.Request) {
	var req EventTypeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	et := &domain.EventType{ID: r.PathValue("typeID"), Name: req.Name}
	if err := c.Service.UpdateEventType(r.Context(), middleware.ActorFromContext(r.Context()), et); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.GetEventType(w, r)
}

// DeleteEventType godoc
// @Summary Delete an event type
// @Description Admin only. Events of this type keep existing without a category.
// @Tags catalog
// @Security BearerAuth
// @Param typeID path string true "Event type ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event-types/{typeID} [delete]
func (c *CatalogController) DeleteEventType(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEventType(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("typeID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
