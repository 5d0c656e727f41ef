package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/delivery/http/middleware"
	"seminarrsvp/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	agentPrincipal    = &domain.Principal{UserID: "agent-1", Email: "agent@example.com", Name: "Agnes", Role: domain.RoleAgent}
	attendeePrincipal = &domain.Principal{UserID: "user-1", Email: "alice@example.com", Name: "Alice", Role: domain.RoleAttendee}
)

func newRequest(method, target, body string, p *domain.Principal) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "http://test"+target, nil)
	} else {
		req = httptest.NewRequest(method, "http://test"+target, strings.NewReader(body))
	}
	if p != nil {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), p))
	}
	return req
}

// decodeEnvelope decodes the response and unmarshals data into dest when it is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if dest != nil && envelope.Error == nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dest))
	}
	return envelope.Error
}

func sampleSeminar() *domain.Seminar {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Seminar{
		ID:                 "sem-1",
		Title:              "Go Concurrency",
		Date:               "2026-11-20",
		Time:               "14:30",
		Description:        "Channels",
		Capacity:           10,
		Price:              10,
		AgentID:            "agent-1",
		Invitees:           []string{"user-2"},
		Attendees:          []string{"user-3"},
		ConfirmedAttendees: []string{"user-3"},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	user         *domain.User
	token        string
	expiresAt    time.Time
	err          error
	lastSignUp   domain.SignUpInput
	lastCode     string
	lastEmail    string
	lastPassword string
}

func (f *fakeAuthService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	f.lastSignUp = in
	return f.user, f.err
}

func (f *fakeAuthService) CreateAdmin(ctx context.Context, in domain.SignUpInput, code string) (*domain.User, error) {
	f.lastSignUp = in
	f.lastCode = code
	return f.user, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.err != nil {
		return "", time.Time{}, nil, f.err
	}
	return f.token, f.expiresAt, f.user, nil
}

// fakeSeminarService implements domain.SeminarService for handler tests.
type fakeSeminarService struct {
	seminar     *domain.Seminar
	seminars    []*domain.Seminar
	withAtt     []*domain.SeminarWithAttendees
	qrURL       string
	err         error
	lastAgentID string
	lastID      string
	lastInput   domain.SeminarInput
	lastPatch   domain.SeminarPatch
}

func (f *fakeSeminarService) CreateSeminar(ctx context.Context, agentID string, in domain.SeminarInput) (*domain.Seminar, error) {
	f.lastAgentID, f.lastInput = agentID, in
	return f.seminar, f.err
}

func (f *fakeSeminarService) ListSeminars(ctx context.Context) ([]*domain.Seminar, error) {
	return f.seminars, f.err
}

func (f *fakeSeminarService) GetSeminar(ctx context.Context, id string) (*domain.Seminar, error) {
	f.lastID = id
	return f.seminar, f.err
}

func (f *fakeSeminarService) UpdateSeminar(ctx context.Context, id, agentID string, p domain.SeminarPatch) (*domain.Seminar, error) {
	f.lastID, f.lastAgentID, f.lastPatch = id, agentID, p
	return f.seminar, f.err
}

func (f *fakeSeminarService) DeleteSeminar(ctx context.Context, id, agentID string) error {
	f.lastID, f.lastAgentID = id, agentID
	return f.err
}

func (f *fakeSeminarService) GenerateQRCode(ctx context.Context, id, agentID string) (*domain.Seminar, string, error) {
	f.lastID, f.lastAgentID = id, agentID
	return f.seminar, f.qrURL, f.err
}

func (f *fakeSeminarService) ListSeminarsWithAttendees(ctx context.Context, agentID string) ([]*domain.SeminarWithAttendees, error) {
	f.lastAgentID = agentID
	return f.withAtt, f.err
}

// fakeRSVPService implements domain.RSVPService for handler tests.
type fakeRSVPService struct {
	seminar      *domain.Seminar
	seminars     []*domain.Seminar
	result       *domain.InvitationResult
	err          error
	lastSeminar  string
	lastUser     string
	lastEmails   []string
	lastResponse domain.RSVPResponse
}

func (f *fakeRSVPService) SendInvitations(ctx context.Context, seminarID, agentID string, emails []string) (*domain.InvitationResult, error) {
	f.lastSeminar, f.lastUser, f.lastEmails = seminarID, agentID, emails
	return f.result, f.err
}

func (f *fakeRSVPService) ListInvitations(ctx context.Context, userID string) ([]domain.AttendeeSeminar, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return domain.ForAttendeeList(f.seminars, userID), nil
}

func (f *fakeRSVPService) GetInvitation(ctx context.Context, seminarID, userID string) (*domain.AttendeeSeminar, error) {
	f.lastSeminar, f.lastUser = seminarID, userID
	if f.err != nil {
		return nil, f.err
	}
	view := f.seminar.ForAttendee(userID)
	return &view, nil
}

func (f *fakeRSVPService) RespondToInvitation(ctx context.Context, seminarID, userID string, r domain.RSVPResponse) (*domain.Seminar, error) {
	f.lastSeminar, f.lastUser, f.lastResponse = seminarID, userID, r
	return f.seminar, f.err
}

func (f *fakeRSVPService) AcceptInvitation(ctx context.Context, seminarID, userID string) (*domain.Seminar, error) {
	return f.RespondToInvitation(ctx, seminarID, userID, domain.RSVPAccept)
}

func (f *fakeRSVPService) DeclineInvitation(ctx context.Context, seminarID, userID string) (*domain.Seminar, error) {
	return f.RespondToInvitation(ctx, seminarID, userID, domain.RSVPDecline)
}

func (f *fakeRSVPService) Register(ctx context.Context, seminarID, userID string) (*domain.Seminar, error) {
	f.lastSeminar, f.lastUser = seminarID, userID
	return f.seminar, f.err
}

func (f *fakeRSVPService) ListConfirmedSeminars(ctx context.Context, userID string) ([]domain.AttendeeSeminar, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return domain.ForAttendeeList(f.seminars, userID), nil
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	users    []*domain.User
	err      error
	lastRole domain.Role
}

func (f *fakeUserService) ListUsers(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	f.lastRole = role
	return f.users, f.err
}
