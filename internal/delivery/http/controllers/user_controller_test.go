package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserController_ListUsers(t *testing.T) {
	admin := &domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
	users := []*domain.User{
		{ID: "u1", Email: "a@example.com", Role: domain.RoleAttendee},
		{ID: "u2", Email: "b@example.com", Role: domain.RoleAttendee},
		{ID: "u3", Email: "c@example.com", Role: domain.RoleAttendee},
	}

	tests := []struct {
		name         string
		query        string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		wantRole     domain.Role
		wantIDs      []string
		wantMeta     helpers.PaginationMeta
	}{
		{
			name:       "all users",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"u1", "u2", "u3"},
			wantMeta:   helpers.PaginationMeta{Page: 1, PageSize: helpers.DefaultPageSize, Total: 3, TotalPages: 1},
		},
		{
			name:       "filtered and paged",
			query:      "?role=Attendee&page=2&page_size=2",
			wantStatus: http.StatusOK,
			wantRole:   domain.RoleAttendee,
			wantIDs:    []string{"u3"},
			wantMeta:   helpers.PaginationMeta{Page: 2, PageSize: 2, Total: 3, TotalPages: 2},
		},
		{
			name:         "unknown role",
			query:        "?role=superuser",
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeInvalidFields,
		},
		{
			name:         "service error",
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{users: users, err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.ListUsers(rr, newRequest(http.MethodGet, "/users"+tt.query, "", admin))

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp ListUsersResponse
			apiErr := decodeEnvelope(t, rr, &resp)
			if tt.wantBodyCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantBodyCode, apiErr.Code)
				return
			}
			assert.Equal(t, tt.wantRole, fake.lastRole)
			ids := make([]string, 0, len(resp.Users))
			for _, u := range resp.Users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantMeta, resp.Pagination)
		})
	}
}
