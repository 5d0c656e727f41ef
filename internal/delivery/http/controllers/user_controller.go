package controllers

import (
	"log/slog"
	"net/http"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/domain"
)

// ListUsersResponse is the response body for GET /users.
type ListUsersResponse struct {
	Users      []*domain.User         `json:"users"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListUsersSuccessResponse is the success response envelope for GET /users (200).
type ListUsersSuccessResponse struct {
	Data  ListUsersResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController serves the admin view over accounts.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// ListUsers godoc
// @Summary List users
// @Description Admin-only. Optionally filtered by role, paginated with page and page_size.
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param role query string false "attendee, agent or admin"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListUsersSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role domain.Role
	if s := r.URL.Query().Get("role"); s != "" {
		parsed, ok := domain.ParseRole(s)
		if !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidFields, `role must be "attendee", "agent" or "admin"`)
			return
		}
		role = parsed
	}
	users, err := c.Service.ListUsers(r.Context(), role)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	page, meta := helpers.Paginate(users, helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, ListUsersResponse{Users: page, Pagination: meta})
}
