package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// EventRequest is the request body for POST and PUT on an event collection.
// duration_seconds defaults to two hours. price is required for paid events and rejected otherwise.
type EventRequest struct {
	Name                    string           `json:"name" validate:"required,max=255"`
	VenueID                 *string          `json:"venue_id" validate:"omitempty,uuid"`
	CategoryID              *string          `json:"category_id" validate:"omitempty,uuid"`
	ShortInformation        *string          `json:"short_information" validate:"omitempty,max=500"`
	FullInformation         *string          `json:"full_information"`
	StartDatetime           time.Time        `json:"start_datetime" validate:"required"`
	DurationSeconds         *int64           `json:"duration_seconds" validate:"omitempty,gte=0"`
	ClosingRegistrationDate time.Time        `json:"closing_registration_date" validate:"required"`
	MaxVisitors             int              `json:"max_visitors" validate:"gte=0"`
	Price                   *decimal.Decimal `json:"price" swaggertype:"string"`
}

func (req EventRequest) duration() time.Duration {
	if req.DurationSeconds == nil {
		return 0
	}
	return time.Duration(*req.DurationSeconds) * time.Second
}

// EventPatchRequest is the request body for PATCH. Omitted fields are unchanged.
type EventPatchRequest struct {
	Name                    *string          `json:"name" validate:"omitempty,max=255"`
	VenueID                 *string          `json:"venue_id" validate:"omitempty,uuid"`
	CategoryID              *string          `json:"category_id" validate:"omitempty,uuid"`
	ShortInformation        *string          `json:"short_information" validate:"omitempty,max=500"`
	FullInformation         *string          `json:"full_information"`
	StartDatetime           *time.Time       `json:"start_datetime"`
	DurationSeconds         *int64           `json:"duration_seconds" validate:"omitempty,gte=0"`
	ClosingRegistrationDate *time.Time       `json:"closing_registration_date"`
	MaxVisitors             *int             `json:"max_visitors" validate:"omitempty,gte=0"`
	Price                   *decimal.Decimal `json:"price" swaggertype:"string"`
}

func (req EventPatchRequest) patch() domain.EventPatch {
	p := domain.EventPatch{
		Name:                    req.Name,
		VenueID:                 req.VenueID,
		CategoryID:              req.CategoryID,
		ShortInformation:        req.ShortInformation,
		FullInformation:         req.FullInformation,
		StartDatetime:           req.StartDatetime,
		ClosingRegistrationDate: req.ClosingRegistrationDate,
		MaxVisitors:             req.MaxVisitors,
		Price:                   req.Price,
	}
	if req.DurationSeconds != nil {
		d := time.Duration(*req.DurationSeconds) * time.Second
		p.Duration = &d
	}
	return p
}

// EventDetailsSuccessResponse is the success envelope for single-event responses.
type EventDetailsSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventListSuccessResponse is the success envelope for event listings.
type EventListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.Event] `json:"data"`
	Error *helpers.APIError                   `json:"error"`
}

// EventController serves one event collection. The same handlers are mounted at
// /events, /private-events and /paid-events with the matching Variant.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Variant domain.Variant
}

func NewEventController(logger *slog.Logger, svc domain.EventService, variant domain.Variant) *EventController {
	return &EventController{Logger: logger, Service: svc, Variant: variant}
}

// ListEvents godoc
// @Summary List events
// @Description Lists events of the collection, newest first. Public events are readable anonymously; /private-events and /paid-events require authentication.
// @Tags events
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param category_id query string false "Filter by event type"
// @Param venue_id query string false "Filter by venue"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	filter := domain.EventFilter{
		Variant:    c.Variant,
		CategoryID: r.URL.Query().Get("category_id"),
		VenueID:    r.URL.Query().Get("venue_id"),
	}
	if err := validFilterID("category_id", filter.CategoryID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := validFilterID("venue_id", filter.VenueID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	events, total, err := c.Service.ListEvents(r.Context(), middleware.ActorFromContext(r.Context()), filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(events, params, total))
}

func validFilterID(field, id string) error {
	if id == "" || uuid.Validate(id) == nil {
		return nil
	}
	return domain.NewValidationError(field, field+" must be a valid UUID")
}

// CreateEvent godoc
// @Summary Create an event
// @Description Admin only. Private and paid events get a generated invitation code, readable via GET /{eventID}/invitation-code. A closing date after the start is clamped to the start.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} controllers.EventDetailsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := &domain.Event{
		Variant:                 c.Variant,
		Name:                    req.Name,
		VenueID:                 req.VenueID,
		CategoryID:              req.CategoryID,
		ShortInformation:        req.ShortInformation,
		FullInformation:         req.FullInformation,
		StartDatetime:           req.StartDatetime,
		Duration:                req.duration(),
		ClosingRegistrationDate: req.ClosingRegistrationDate,
		MaxVisitors:             req.MaxVisitors,
		Price:                   req.Price,
	}
	details, err := c.Service.CreateEvent(r.Context(), middleware.ActorFromContext(r.Context()), event)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, details)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with end_datetime and visitors_count. The invitation code is never included.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	details, err := c.Service.GetEvent(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// ReplaceEvent godoc
// @Summary Replace an event
// @Description Admin only. Replaces every editable field.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) ReplaceEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	d := req.duration()
	if req.DurationSeconds == nil {
		d = domain.DefaultEventDuration
	}
	c.update(w, r, domain.EventPatch{
		Name:                    &req.Name,
		VenueID:                 req.VenueID,
		CategoryID:              req.CategoryID,
		ShortInformation:        req.ShortInformation,
		FullInformation:         req.FullInformation,
		StartDatetime:           &req.StartDatetime,
		Duration:                &d,
		ClosingRegistrationDate: &req.ClosingRegistrationDate,
		MaxVisitors:             &req.MaxVisitors,
		Price:                   req.Price,
	})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Admin only. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body EventPatchRequest true "Fields to update"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventPatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.update(w, r, req.patch())
}

func (c *EventController) update(w http.ResponseWriter, r *http.Request, patch domain.EventPatch) {
	details, err := c.Service.UpdateEvent(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"), patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Admin only. Removes the event with all registrations and emails the confirmed visitors.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEvent(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
