package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/delivery/http/middleware"
	"seminarrsvp/internal/domain"
)

// SignUpRequest is the request body for POST /signup
type SignUpRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"` // optional: "attendee" (default) or "agent"
	PhoneNumber string `json:"phoneNumber"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	if s.Role != "" {
		if _, ok := domain.ParseRole(s.Role); !ok {
			errs = append(errs, `role must be "attendee" or "agent"`)
		}
	}
	return errs
}

func (s SignUpRequest) input() domain.SignUpInput {
	role, _ := domain.ParseRole(s.Role)
	return domain.SignUpInput{
		Name:        s.Name,
		Email:       s.Email,
		Password:    s.Password,
		Role:        role,
		PhoneNumber: s.PhoneNumber,
	}
}

// CreateAdminRequest is the request body for POST /admin/users
type CreateAdminRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	AdminCode   string `json:"adminCode"`
}

// Validate implements Validator.
func (c CreateAdminRequest) Validate() []string {
	errs := SignUpRequest{Name: c.Name, Email: c.Email, Password: c.Password}.Validate()
	if c.AdminCode == "" {
		errs = append(errs, "adminCode is required")
	}
	return errs
}

// LoginRequest is the request body for POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /login. The token itself travels in the cookie.
type LoginResponse struct {
	UserID    string      `json:"userId"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// SignUpSuccessResponse is the success response envelope for POST /signup (201).
type SignUpSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LoginSuccessResponse is the success response envelope for POST /login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CurrentUserSuccessResponse is the success response envelope for GET /user (200).
type CurrentUserSuccessResponse struct {
	Data  *domain.Principal `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthController handles sign-up, login, logout and identity endpoints.
type AuthController struct {
	Logger       *slog.Logger
	Service      domain.AuthService
	CookieSecure bool
	// Now is used for cookie Max-Age; nil means time.Now.
	Now func() time.Time
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, cookieSecure bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Service:      svc,
		CookieSecure: cookieSecure,
		Now:          time.Now,
	}
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Create an attendee (default) or agent account. Password is stored hashed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} controllers.SignUpSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_fields"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SignUp(r.Context(), req.input())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// CreateAdmin godoc
// @Summary Create an admin account
// @Description Admin-only. The adminCode must match the server's configured code.
// @Tags auth
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body CreateAdminRequest true "Admin data"
// @Success 201 {object} controllers.SignUpSuccessResponse "data contains the created admin"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [post]
func (c *AuthController) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in := domain.SignUpInput{Name: req.Name, Email: req.Email, Password: req.Password, PhoneNumber: req.PhoneNumber}
	user, err := c.Service.CreateAdmin(r.Context(), in, req.AdminCode)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Sets the httpOnly "token" identity cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains role, name, email and expiresAt"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_fields"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, expiresAt, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	maxAge := int(expiresAt.Sub(c.now()).Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   max(maxAge, 1),
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		UserID:    user.ID,
		Role:      user.Role,
		Name:      user.Name,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears the identity cookie by replacing it with an expired one.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CurrentUser godoc
// @Summary Current identity
// @Description Returns the principal carried by the caller's identity token.
// @Tags auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} controllers.CurrentUserSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /user [get]
func (c *AuthController) CurrentUser(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

func (c *AuthController) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
