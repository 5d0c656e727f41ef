package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seminarWith(capacity int, invitees, attendees []string) *Seminar {
	s := NewSeminar(SeminarInput{Title: "Go", Date: "2026-03-01", Time: "10:00", Description: "d", Capacity: capacity}, "agent-1", time.Now(), time.Now())
	s.Invitees = invitees
	s.Attendees = attendees
	return s
}

func TestSeminar_CheckAccept(t *testing.T) {
	tests := []struct {
		name    string
		seminar *Seminar
		user    string
		want    error
	}{
		{"invited with seats", seminarWith(2, []string{"u1"}, nil), "u1", nil},
		{"not invited", seminarWith(2, []string{"u2"}, nil), "u1", ErrNotInvited},
		{"full", seminarWith(1, []string{"u1"}, []string{"u9"}), "u1", ErrCapacityExceeded},
		{"already attending", seminarWith(2, nil, []string{"u1"}), "u1", ErrAlreadyRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seminar.CheckAccept(tt.user)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSeminar_CheckRegister(t *testing.T) {
	tests := []struct {
		name    string
		seminar *Seminar
		user    string
		want    error
	}{
		{"open seminar", seminarWith(2, nil, nil), "u1", nil},
		{"invite-only and invited", seminarWith(2, []string{"u1"}, nil), "u1", nil},
		{"invite-only and not invited", seminarWith(2, []string{"u2"}, nil), "u1", ErrNotInvited},
		{"full", seminarWith(1, nil, []string{"u2"}), "u1", ErrCapacityExceeded},
		{"already registered", seminarWith(3, nil, []string{"u1"}), "u1", ErrAlreadyRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seminar.CheckRegister(tt.user)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSeminar_CheckDecline(t *testing.T) {
	s := seminarWith(2, []string{"u1"}, []string{"u2"})
	assert.NoError(t, s.CheckDecline("u1"))
	assert.ErrorIs(t, s.CheckDecline("u2"), ErrNotInvited)
}

func TestSeminar_SeatsLeft(t *testing.T) {
	assert.Equal(t, 2, seminarWith(3, nil, []string{"a"}).SeatsLeft())
	assert.Equal(t, 0, seminarWith(1, nil, []string{"a", "b"}).SeatsLeft())
}

func TestSeminar_ForAttendee(t *testing.T) {
	s := &Seminar{ID: "s1", Title: "Go", Capacity: 3, Invitees: []string{"u1"}, Attendees: []string{"u2"}, ConfirmedAttendees: []string{"u2"}}

	tests := []struct {
		userID string
		want   AttendanceStatus
	}{
		{"u1", StatusInvited},
		{"u2", StatusAttending},
		{"u3", StatusNone},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			view := s.ForAttendee(tt.userID)
			assert.Equal(t, tt.want, view.Status)
			assert.Equal(t, "s1", view.ID)
			assert.Equal(t, 2, view.SeatsLeft)
			assert.True(t, view.InviteOnly)
		})
	}

	list := ForAttendeeList([]*Seminar{s}, "u2")
	require.Len(t, list, 1)
	assert.Equal(t, StatusAttending, list[0].Status)
	assert.Empty(t, ForAttendeeList(nil, "u2"))
	assert.NotNil(t, ForAttendeeList(nil, "u2"))
}

func TestSeminarInput_Validate(t *testing.T) {
	valid := SeminarInput{Title: "Go", Date: "2026-03-01", Time: "09:30", Description: "intro", Capacity: 10, Price: 0}
	assert.Empty(t, valid.Validate())

	bad := SeminarInput{Date: "01/03/2026", Time: "9am", Capacity: -1, Price: -5}
	errs := bad.Validate()
	assert.Contains(t, errs, "title is required")
	assert.Contains(t, errs, "date must be formatted as YYYY-MM-DD")
	assert.Contains(t, errs, "time must be formatted as HH:MM")
	assert.Contains(t, errs, "description is required")
	assert.Contains(t, errs, "capacity must be a positive integer")
	assert.Contains(t, errs, "price must not be negative")
}

func TestSeminarPatch(t *testing.T) {
	assert.True(t, SeminarPatch{}.IsEmpty())
	assert.False(t, SeminarPatch{ClearQRCode: true}.IsEmpty())

	zero := 0
	assert.Equal(t, []string{"capacity must be a positive integer"}, SeminarPatch{Capacity: &zero}.Validate())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("a is required", "b is required")
	require.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "a is required; b is required", err.Error())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Agent ")
	require.True(t, ok)
	assert.Equal(t, RoleAgent, r)
	_, ok = ParseRole("owner")
	assert.False(t, ok)
}
