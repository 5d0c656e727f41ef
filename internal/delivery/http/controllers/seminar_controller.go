package controllers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/domain"
)

// CreateSeminarRequest is the request body for POST /seminars.
type CreateSeminarRequest struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Description string   `json:"description"`
	Capacity    *int     `json:"capacity"`
	Price       *float64 `json:"price"`
}

// Validate implements Validator. Only presence is checked here; formats are checked by the service.
func (c CreateSeminarRequest) Validate() []string {
	var errs []string
	if c.Capacity == nil {
		errs = append(errs, "capacity is required")
	}
	if c.Price == nil {
		errs = append(errs, "price is required")
	}
	return errs
}

func (c CreateSeminarRequest) input() domain.SeminarInput {
	return domain.SeminarInput{
		Title:       strings.TrimSpace(c.Title),
		Date:        strings.TrimSpace(c.Date),
		Time:        strings.TrimSpace(c.Time),
		Description: strings.TrimSpace(c.Description),
		Capacity:    *c.Capacity,
		Price:       *c.Price,
	}
}

// CreateSeminarResponse is the response body for POST /seminars.
type CreateSeminarResponse struct {
	SeminarID string          `json:"seminarId"`
	Seminar   *domain.Seminar `json:"seminar"`
}

// CreateSeminarSuccessResponse is the success response envelope for POST /seminars (201).
type CreateSeminarSuccessResponse struct {
	Data  CreateSeminarResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// nullableString records whether a JSON field was present, and whether it was null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// UpdateSeminarRequest is the request body for PATCH /seminars/{id}. Omitted fields are
// unchanged; "qrCode": null removes the stored QR code.
type UpdateSeminarRequest struct {
	Title       *string        `json:"title"`
	Date        *string        `json:"date"`
	Time        *string        `json:"time"`
	Description *string        `json:"description"`
	Capacity    *int           `json:"capacity"`
	Price       *float64       `json:"price"`
	QRCode      nullableString `json:"qrCode" swaggertype:"string"`
}

func (u UpdateSeminarRequest) patch() domain.SeminarPatch {
	p := domain.SeminarPatch{
		Title:       u.Title,
		Date:        u.Date,
		Time:        u.Time,
		Description: u.Description,
		Capacity:    u.Capacity,
		Price:       u.Price,
	}
	if u.QRCode.Set {
		if u.QRCode.Value == nil {
			p.ClearQRCode = true
		} else {
			p.QRCode = u.QRCode.Value
		}
	}
	return p
}

// GenerateQRCodeResponse is the response body for POST /seminars/{id}/qr.
type GenerateQRCodeResponse struct {
	SeminarID       string `json:"seminarId"`
	QRCodeDataURL   string `json:"qrCodeDataUrl"`
	RegistrationURL string `json:"registrationUrl"`
}

// RegisterRequest is the request body for POST /seminars/register.
type RegisterRequest struct {
	SeminarID string `json:"seminarId"`
}

// Validate implements Validator.
func (r RegisterRequest) Validate() []string {
	if strings.TrimSpace(r.SeminarID) == "" {
		return []string{"seminarId is required"}
	}
	return nil
}

// SeminarSuccessResponse is the success response envelope for endpoints returning one seminar.
type SeminarSuccessResponse struct {
	Data  *domain.Seminar   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SeminarListSuccessResponse is the success response envelope for endpoints returning seminars.
type SeminarListSuccessResponse struct {
	Data  []*domain.Seminar `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SeminarsWithAttendeesSuccessResponse is the success response envelope for GET /agent/seminars.
type SeminarsWithAttendeesSuccessResponse struct {
	Data  []*domain.SeminarWithAttendees `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// PublicSeminarSuccessResponse is the success response envelope for GET /register/{id}.
type PublicSeminarSuccessResponse struct {
	Data  domain.PublicSeminar `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// SeminarController handles seminar management and direct registration.
type SeminarController struct {
	Logger   *slog.Logger
	Seminars domain.SeminarService
	RSVP     domain.RSVPService
}

func NewSeminarController(logger *slog.Logger, seminars domain.SeminarService, rsvp domain.RSVPService) *SeminarController {
	return &SeminarController{Logger: logger, Seminars: seminars, RSVP: rsvp}
}

func seminarID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing seminar id")
		return "", false
	}
	return id, true
}

// CreateSeminar godoc
// @Summary Create a seminar
// @Description Agent-only. The caller becomes the seminar's agent.
// @Tags seminars
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param seminar body CreateSeminarRequest true "Seminar data"
// @Success 201 {object} controllers.CreateSeminarSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars [post]
func (c *SeminarController) CreateSeminar(w http.ResponseWriter, r *http.Request) {
	var req CreateSeminarRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminar, err := c.Seminars.CreateSeminar(r.Context(), p.UserID, req.input())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateSeminarResponse{SeminarID: seminar.ID, Seminar: seminar})
}

// ListSeminars godoc
// @Summary List seminars
// @Tags seminars
// @Produce json
// @Security CookieAuth
// @Success 200 {object} controllers.SeminarListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars [get]
func (c *SeminarController) ListSeminars(w http.ResponseWriter, r *http.Request) {
	seminars, err := c.Seminars.ListSeminars(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminars)
}

// GetSeminar godoc
// @Summary Get a seminar
// @Tags seminars
// @Produce json
// @Security CookieAuth
// @Param id path string true "Seminar ID"
// @Success 200 {object} controllers.SeminarSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars/{id} [get]
func (c *SeminarController) GetSeminar(w http.ResponseWriter, r *http.Request) {
	id, ok := seminarID(w, r)
	if !ok {
		return
	}
	seminar, err := c.Seminars.GetSeminar(r.Context(), id)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminar)
}

// UpdateSeminar godoc
// @Summary Update a seminar
// @Description Agent-only, owner only. Partial update; "qrCode": null clears the stored QR code. Capacity cannot drop below the current attendee count.
// @Tags seminars
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Seminar ID"
// @Param seminar body UpdateSeminarRequest true "Fields to change"
// @Success 200 {object} controllers.SeminarSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars/{id} [patch]
func (c *SeminarController) UpdateSeminar(w http.ResponseWriter, r *http.Request) {
	id, ok := seminarID(w, r)
	if !ok {
		return
	}
	var req UpdateSeminarRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminar, err := c.Seminars.UpdateSeminar(r.Context(), id, p.UserID, req.patch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminar)
}

// DeleteSeminar godoc
// @Summary Delete a seminar
// @Description Agent-only, owner only.
// @Tags seminars
// @Produce json
// @Security CookieAuth
// @Param id path string true "Seminar ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars/{id} [delete]
func (c *SeminarController) DeleteSeminar(w http.ResponseWriter, r *http.Request) {
	id, ok := seminarID(w, r)
	if !ok {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := c.Seminars.DeleteSeminar(r.Context(), id, p.UserID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"seminarId": id})
}

// GenerateQRCode godoc
// @Summary Generate a registration QR code
// @Description Agent-only, owner only. Encodes the public registration URL as a PNG data URL and stores it on the seminar.
// @Tags seminars
// @Produce json
// @Security CookieAuth
// @Param id path string true "Seminar ID"
// @Success 200 {object} helpers.APIResponse "data is a GenerateQRCodeResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars/{id}/qr [post]
func (c *SeminarController) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := seminarID(w, r)
	if !ok {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminar, url, err := c.Seminars.GenerateQRCode(r.Context(), id, p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	resp := GenerateQRCodeResponse{SeminarID: seminar.ID, RegistrationURL: url}
	if seminar.QRCode != nil {
		resp.QRCodeDataURL = *seminar.QRCode
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// ListSeminarsWithAttendees godoc
// @Summary Agent's seminars with attendees
// @Description Agent-only. The caller's seminars with attendee names and emails resolved.
// @Tags seminars
// @Produce json
// @Security CookieAuth
// @Success 200 {object} controllers.SeminarsWithAttendeesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /agent/seminars [get]
func (c *SeminarController) ListSeminarsWithAttendees(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminars, err := c.Seminars.ListSeminarsWithAttendees(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminars)
}

// Register godoc
// @Summary Register for a seminar
// @Description Attendee-only. Seminars with pending invitations admit invitees only.
// @Tags seminars
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body RegisterRequest true "Seminar to join"
// @Success 200 {object} controllers.AttendeeSeminarSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: capacity_exceeded, already_registered or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: not_invited or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /seminars/register [post]
func (c *SeminarController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminar, err := c.RSVP.Register(r.Context(), strings.TrimSpace(req.SeminarID), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminar.ForAttendee(p.UserID))
}

// ListConfirmedSeminars godoc
// @Summary Attendee's seminars
// @Description Attendee-only. Seminars the caller attends.
// @Tags seminars
// @Produce json
// @Security CookieAuth
// @Success 200 {object} controllers.AttendeeSeminarListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/seminars [get]
func (c *SeminarController) ListConfirmedSeminars(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	seminars, err := c.RSVP.ListConfirmedSeminars(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminars)
}

// PublicSeminar godoc
// @Summary Public registration view
// @Description Unauthenticated view behind a QR code's registration URL.
// @Tags seminars
// @Produce json
// @Param id path string true "Seminar ID"
// @Success 200 {object} controllers.PublicSeminarSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /register/{id} [get]
func (c *SeminarController) PublicSeminar(w http.ResponseWriter, r *http.Request) {
	id, ok := seminarID(w, r)
	if !ok {
		return
	}
	seminar, err := c.Seminars.GetSeminar(r.Context(), id)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, seminar.Public())
}
