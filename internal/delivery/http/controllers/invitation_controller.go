package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/domain"
)

// SendInvitationsRequest is the request body for POST /invitations/send.
type SendInvitationsRequest struct {
	SeminarID      string   `json:"seminarId"`
	AttendeeEmails []string `json:"attendeeEmails"`
}

// Validate implements Validator.
func (s SendInvitationsRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.SeminarID) == "" {
		errs = append(errs, "seminarId is required")
	}
	if len(s.AttendeeEmails) == 0 {
		errs = append(errs, "attendeeEmails is required")
	}
	return errs
}

// SendInvitationsSuccessResponse is the success response envelope for POST /invitations/send (200).
type SendInvitationsSuccessResponse struct {
	Data  *domain.InvitationResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// AttendeeSeminarSuccessResponse is the success response envelope for endpoints returning one seminar to an attendee.
type AttendeeSeminarSuccessResponse struct {
	Data  *domain.AttendeeSeminar `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// AttendeeSeminarListSuccessResponse is the success response envelope for attendee seminar lists.
type AttendeeSeminarListSuccessResponse struct {
	Data  []domain.AttendeeSeminar `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// RSVPRequest is the request body for POST /invitations/rsvp. The invitation id is the seminar id.
type RSVPRequest struct {
	InvitationID string `json:"invitationId"`
	Response     string `json:"response"`
}

// Validate implements Validator.
func (r RSVPRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.InvitationID) == "" {
		errs = append(errs, "invitationId is required")
	}
	if _, ok := domain.ParseRSVPResponse(r.Response); !ok {
		errs = append(errs, `response must be "accept" or "decline"`)
	}
	return errs
}

// InvitationController handles the invitation lifecycle.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewInvitationController(logger *slog.Logger, svc domain.RSVPService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc}
}

// SendInvitations godoc
// @Summary Invite attendees
// @Description Agent-only, owner only. Emails without an attendee account are returned in unknownEmails.
// @Tags invitations
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body SendInvitationsRequest true "Seminar and attendee emails"
// @Success 200 {object} controllers.SendInvitationsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/send [post]
func (c *InvitationController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	result, err := c.Service.SendInvitations(r.Context(), strings.TrimSpace(req.SeminarID), p.UserID, req.AttendeeEmails)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListInvitations godoc
// @Summary Pending invitations
// @Description Attendee-only. Seminars where the caller has a pending invitation.
// @Tags invitations
// @Produce json
// @Security CookieAuth
// @Success 200 {object} controllers.AttendeeSeminarListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminars, err := c.Service.ListInvitations(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminars)
}

// GetInvitation godoc
// @Summary Invitation details
// @Description Attendee-only. The caller must be invited to, or attending, the seminar.
// @Tags invitations
// @Produce json
// @Security CookieAuth
// @Param id path string true "Invitation (seminar) ID"
// @Success 200 {object} controllers.AttendeeSeminarSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: not_invited or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{id} [get]
func (c *InvitationController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := seminarID(w, r)
	if !ok {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminar, err := c.Service.GetInvitation(r.Context(), id, p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminar)
}

// RSVP godoc
// @Summary Respond to an invitation
// @Description Attendee-only. Accepting moves the caller from invitees to attendees while seats remain.
// @Tags invitations
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body RSVPRequest true "Invitation id and response"
// @Success 200 {object} controllers.AttendeeSeminarSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: capacity_exceeded, already_registered or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: not_invited or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/rsvp [post]
func (c *InvitationController) RSVP(w http.ResponseWriter, r *http.Request) {
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	response, _ := domain.ParseRSVPResponse(req.Response)
	seminar, err := c.Service.RespondToInvitation(r.Context(), strings.TrimSpace(req.InvitationID), p.UserID, response)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminar.ForAttendee(p.UserID))
}
