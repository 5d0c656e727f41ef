package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

const (
	seminarDateLayout = "2006-01-02"
	seminarTimeLayout = "15:04"
)

// Seminar is a scheduled event owned by an agent.
// Invitees, Attendees and ConfirmedAttendees hold user ids and behave as sets.
// swagger:model Seminar
type Seminar struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Date               string    `json:"date"`
	Time               string    `json:"time"`
	Description        string    `json:"description"`
	Capacity           int       `json:"capacity"`
	Price              float64   `json:"price"`
	AgentID            string    `json:"agentId"`
	Invitees           []string  `json:"invitees"`
	Attendees          []string  `json:"attendees"`
	ConfirmedAttendees []string  `json:"confirmedAttendees"`
	QRCode             *string   `json:"qrCode"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// NewSeminar returns a Seminar with empty membership sets. ID is set by the repository on create.
func NewSeminar(in SeminarInput, agentID string, createdAt, updatedAt time.Time) *Seminar {
	return &Seminar{
		Title:              strings.TrimSpace(in.Title),
		Date:               strings.TrimSpace(in.Date),
		Time:               strings.TrimSpace(in.Time),
		Description:        strings.TrimSpace(in.Description),
		Capacity:           in.Capacity,
		Price:              in.Price,
		AgentID:            agentID,
		Invitees:           []string{},
		Attendees:          []string{},
		ConfirmedAttendees: []string{},
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
}

func (s *Seminar) IsInvited(userID string) bool { return slices.Contains(s.Invitees, userID) }

func (s *Seminar) IsAttendee(userID string) bool { return slices.Contains(s.Attendees, userID) }

// IsFull reports whether no seat is left.
func (s *Seminar) IsFull() bool { return len(s.Attendees) >= s.Capacity }

// SeatsLeft never goes below zero.
func (s *Seminar) SeatsLeft() int {
	return max(s.Capacity-len(s.Attendees), 0)
}

// InviteOnly reports whether direct registration is restricted to invitees.
func (s *Seminar) InviteOnly() bool { return len(s.Invitees) > 0 }

// CheckAccept returns the reason userID cannot accept an invitation in the current state, or nil.
func (s *Seminar) CheckAccept(userID string) error {
	switch {
	case s.IsAttendee(userID):
		return ErrAlreadyRegistered
	case !s.IsInvited(userID):
		return ErrNotInvited
	case s.IsFull():
		return ErrCapacityExceeded
	}
	return nil
}

// CheckDecline returns ErrNotInvited unless userID has a pending invitation.
func (s *Seminar) CheckDecline(userID string) error {
	if !s.IsInvited(userID) {
		return ErrNotInvited
	}
	return nil
}

// CheckRegister returns the reason userID cannot register directly in the current state, or nil.
func (s *Seminar) CheckRegister(userID string) error {
	switch {
	case s.IsAttendee(userID):
		return ErrAlreadyRegistered
	case s.InviteOnly() && !s.IsInvited(userID):
		return ErrNotInvited
	case s.IsFull():
		return ErrCapacityExceeded
	}
	return nil
}

// SeminarInput holds the agent-supplied fields of a new seminar.
type SeminarInput struct {
	Title       string
	Date        string
	Time        string
	Description string
	Capacity    int
	Price       float64
}

// Validate returns one message per invalid field.
func (in SeminarInput) Validate() []string {
	var errs []string
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, "title is required")
	}
	errs = append(errs, validateDate(in.Date)...)
	errs = append(errs, validateTime(in.Time)...)
	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, "description is required")
	}
	if in.Capacity <= 0 {
		errs = append(errs, "capacity must be a positive integer")
	}
	if in.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

func validateDate(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{"date is required"}
	}
	if _, err := time.Parse(seminarDateLayout, s); err != nil {
		return []string{"date must be formatted as YYYY-MM-DD"}
	}
	return nil
}

func validateTime(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{"time is required"}
	}
	if _, err := time.Parse(seminarTimeLayout, s); err != nil {
		return []string{"time must be formatted as HH:MM"}
	}
	return nil
}

// SeminarPatch is a partial update. Nil fields are left unchanged.
// ClearQRCode removes the stored QR artifact and wins over QRCode.
type SeminarPatch struct {
	Title       *string
	Date        *string
	Time        *string
	Description *string
	Capacity    *int
	Price       *float64
	QRCode      *string
	ClearQRCode bool
}

// IsEmpty reports whether the patch changes nothing.
func (p SeminarPatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.Time == nil && p.Description == nil &&
		p.Capacity == nil && p.Price == nil && p.QRCode == nil && !p.ClearQRCode
}

// Validate checks every field that is set.
func (p SeminarPatch) Validate() []string {
	var errs []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if p.Date != nil {
		errs = append(errs, validateDate(*p.Date)...)
	}
	if p.Time != nil {
		errs = append(errs, validateTime(*p.Time)...)
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		errs = append(errs, "description must not be empty")
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		errs = append(errs, "capacity must be a positive integer")
	}
	if p.Price != nil && *p.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

// SeminarWithAttendees is a seminar together with the resolved attendee records.
type SeminarWithAttendees struct {
	*Seminar
	AttendeeDetails []UserSummary `json:"attendeeDetails"`
}

// PublicSeminar is the unauthenticated view behind a registration URL.
type PublicSeminar struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	SeatsLeft   int     `json:"seatsLeft"`
	InviteOnly  bool    `json:"inviteOnly"`
}

// Public returns the unauthenticated projection of s.
func (s *Seminar) Public() PublicSeminar {
	return PublicSeminar{
		ID:          s.ID,
		Title:       s.Title,
		Date:        s.Date,
		Time:        s.Time,
		Description: s.Description,
		Price:       s.Price,
		SeatsLeft:   s.SeatsLeft(),
		InviteOnly:  s.InviteOnly(),
	}
}

// AttendanceStatus is an attendee's relation to a seminar.
type AttendanceStatus string

const (
	StatusInvited   AttendanceStatus = "invited"
	StatusAttending AttendanceStatus = "attending"
	StatusNone      AttendanceStatus = "none"
)

// AttendeeSeminar is a seminar as shown to one attendee. Other users' ids are never included.
type AttendeeSeminar struct {
	PublicSeminar
	Status AttendanceStatus `json:"status"`
}

// ForAttendee returns the projection of s seen by userID.
func (s *Seminar) ForAttendee(userID string) AttendeeSeminar {
	status := StatusNone
	switch {
	case s.IsAttendee(userID):
		status = StatusAttending
	case s.IsInvited(userID):
		status = StatusInvited
	}
	return AttendeeSeminar{PublicSeminar: s.Public(), Status: status}
}

// ForAttendeeList projects each seminar for userID, preserving order.
func ForAttendeeList(seminars []*Seminar, userID string) []AttendeeSeminar {
	out := make([]AttendeeSeminar, 0, len(seminars))
	for _, s := range seminars {
		out = append(out, s.ForAttendee(userID))
	}
	return out
}

// InvitationResult reports which emails were resolved to attendees.
type InvitationResult struct {
	Seminar       *Seminar `json:"seminar"`
	Invited       []string `json:"invited"`
	UnknownEmails []string `json:"unknownEmails"`
}

// RSVPResponse is an invitee's answer.
type RSVPResponse string

const (
	RSVPAccept  RSVPResponse = "accept"
	RSVPDecline RSVPResponse = "decline"
)

// ParseRSVPResponse accepts "accept" or "decline" in any case.
func ParseRSVPResponse(s string) (RSVPResponse, bool) {
	r := RSVPResponse(strings.TrimSpace(strings.ToLower(s)))
	if r == RSVPAccept || r == RSVPDecline {
		return r, true
	}
	return "", false
}

// SeminarRepository defines the interface for seminar storage.
// AcceptInvitation, DeclineInvitation and Register apply their preconditions and mutation
// as one atomic conditional update and return ErrConditionNotMet when nothing matched.
type SeminarRepository interface {
	Create(ctx context.Context, seminar *Seminar) error
	GetByID(ctx context.Context, id string) (*Seminar, error)
	List(ctx context.Context) ([]*Seminar, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Seminar, error)
	ListByInvitee(ctx context.Context, userID string) ([]*Seminar, error)
	ListByAttendee(ctx context.Context, userID string) ([]*Seminar, error)
	Update(ctx context.Context, id string, patch SeminarPatch) (*Seminar, error)
	AddInvitees(ctx context.Context, id string, userIDs []string) (*Seminar, error)
	AcceptInvitation(ctx context.Context, id, userID string) (*Seminar, error)
	DeclineInvitation(ctx context.Context, id, userID string) (*Seminar, error)
	Register(ctx context.Context, id, userID string) (*Seminar, error)
	Delete(ctx context.Context, id string) error
}

// SeminarService covers agent-side seminar management.
type SeminarService interface {
	CreateSeminar(ctx context.Context, agentID string, in SeminarInput) (*Seminar, error)
	ListSeminars(ctx context.Context) ([]*Seminar, error)
	GetSeminar(ctx context.Context, id string) (*Seminar, error)
	UpdateSeminar(ctx context.Context, id, agentID string, patch SeminarPatch) (*Seminar, error)
	DeleteSeminar(ctx context.Context, id, agentID string) error
	GenerateQRCode(ctx context.Context, id, agentID string) (*Seminar, string, error)
	ListSeminarsWithAttendees(ctx context.Context, agentID string) ([]*SeminarWithAttendees, error)
}

// RSVPService drives the invitation and registration lifecycle.
type RSVPService interface {
	SendInvitations(ctx context.Context, seminarID, agentID string, emails []string) (*InvitationResult, error)
	ListInvitations(ctx context.Context, userID string) ([]AttendeeSeminar, error)
	GetInvitation(ctx context.Context, seminarID, userID string) (*AttendeeSeminar, error)
	RespondToInvitation(ctx context.Context, seminarID, userID string, response RSVPResponse) (*Seminar, error)
	AcceptInvitation(ctx context.Context, seminarID, userID string) (*Seminar, error)
	DeclineInvitation(ctx context.Context, seminarID, userID string) (*Seminar, error)
	Register(ctx context.Context, seminarID, userID string) (*Seminar, error)
	ListConfirmedSeminars(ctx context.Context, userID string) ([]AttendeeSeminar, error)
}
