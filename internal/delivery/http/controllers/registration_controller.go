package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// RegisterRequest is the optional body of POST /{eventID}/registration.
// invitation_code is required for private and paid events.
type RegisterRequest struct {
	InvitationCode string `json:"invitation_code" validate:"omitempty,max=64"`
}

// InviteRequest is the body of POST /{eventID}/invitation.
type InviteRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// InvitationCodeResponse is the data of GET /{eventID}/invitation-code.
type InvitationCodeResponse struct {
	InvitationCode string `json:"invitation_code"`
}

// RegistrationSuccessResponse is the success envelope for registration writes.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GuestListSuccessResponse is the success envelope for GET /{eventID}/guestlist.
type GuestListSuccessResponse struct {
	Data  []*domain.Guest   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RegistrationController serves the registration and invitation sub-actions of one event collection.
type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
	Variant domain.Variant
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, variant domain.Variant) *RegistrationController {
	return &RegistrationController{Logger: logger, Service: svc, Variant: variant}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the caller. Private and paid events need the invitation code. For paid events the response carries payment_link; the registration is confirmed once the payment is received.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterRequest false "Invitation code"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or payment_not_configured"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /events/{eventID}/registration [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeOptional(w, r, &req) {
		return
	}
	reg, err := c.Service.Register(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"), req.InvitationCode)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// CancelRegistration godoc
// @Summary Cancel a registration
// @Description Removes the caller's registration in any state. A pending bill is cancelled at the gateway.
// @Tags registrations
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/registration [delete]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.CancelRegistration(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite godoc
// @Summary Invite a user
// @Description Admin only; private and paid events. Creates a pending invitation for user_id.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body InviteRequest true "User to invite"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /private-events/{eventID}/invitation [post]
func (c *RegistrationController) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.Invite(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"), req.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// RevokeInvitation godoc
// @Summary Decline an invitation
// @Description Removes the caller's pending invitation.
// @Tags registrations
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /private-events/{eventID}/invitation [delete]
func (c *RegistrationController) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.RevokeInvitation(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description Accepts the caller's pending invitation. For paid events the response carries payment_link.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: payment_not_configured"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /private-events/{eventID}/confirm-invitation [post]
func (c *RegistrationController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	reg, err := c.Service.AcceptInvitation(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// GetInvitationCode godoc
// @Summary Get the invitation code
// @Description Admin only; private and paid events.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=controllers.InvitationCodeResponse}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /private-events/{eventID}/invitation-code [get]
func (c *RegistrationController) GetInvitationCode(w http.ResponseWriter, r *http.Request) {
	code, err := c.Service.GetInvitationCode(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InvitationCodeResponse{InvitationCode: code})
}

// ListGuests godoc
// @Summary List confirmed visitors
// @Description Accepted registrations; for paid events only those with a received payment.
// @Tags registrations
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GuestListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guestlist [get]
func (c *RegistrationController) ListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := c.Service.ListGuests(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guests)
}

// RegistrationListSuccessResponse is the success envelope for GET /{eventID}/registrations.
type RegistrationListSuccessResponse struct {
	Data  helpers.ListResponse[*domain.Registration] `json:"data"`
	Error *helpers.APIError                          `json:"error"`
}

// ListRegistrations godoc
// @Summary List the event's registrations
// @Description Admin only. Every row of the event, pending invitations and unpaid bills included.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} controllers.RegistrationListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	regs, total, err := c.Service.ListRegistrations(r.Context(), middleware.ActorFromContext(r.Context()), c.Variant, r.PathValue("eventID"), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewListResponse(regs, params, total))
}
