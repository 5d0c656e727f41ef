package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"seminarrsvp/internal/delivery/http/controllers"
	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/delivery/http/middleware"
	"seminarrsvp/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth        *controllers.AuthController
	Seminars    *controllers.SeminarController
	Invitations *controllers.InvitationController
	Users       *controllers.UserController
}

// NewRouter initializes the HTTP router with all application routes. Every gated route
// is checked by gate against its operation before the handler runs.
func NewRouter(c Controllers, gate *middleware.Gate) *http.ServeMux {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("POST /signup", c.Auth.SignUp)
	mux.HandleFunc("POST /login", c.Auth.Login)
	mux.HandleFunc("POST /logout", c.Auth.Logout)
	mux.HandleFunc("GET /register/{id}", c.Seminars.PublicSeminar)
	mux.HandleFunc("GET /health", health)

	// Identity and accounts
	mux.HandleFunc("GET /user", gate.Require(domain.OpGetCurrentUser, c.Auth.CurrentUser))
	mux.HandleFunc("POST /admin/users", gate.Require(domain.OpCreateAdmin, c.Auth.CreateAdmin))
	mux.HandleFunc("GET /users", gate.Require(domain.OpListUsers, c.Users.ListUsers))

	// Seminars
	mux.HandleFunc("POST /seminars", gate.Require(domain.OpCreateSeminar, c.Seminars.CreateSeminar))
	mux.HandleFunc("GET /seminars", gate.Require(domain.OpListSeminars, c.Seminars.ListSeminars))
	mux.HandleFunc("POST /seminars/register", gate.Require(domain.OpRegister, c.Seminars.Register))
	mux.HandleFunc("GET /seminars/{id}", gate.Require(domain.OpGetSeminar, c.Seminars.GetSeminar))
	mux.HandleFunc("PATCH /seminars/{id}", gate.Require(domain.OpUpdateSeminar, c.Seminars.UpdateSeminar))
	mux.HandleFunc("DELETE /seminars/{id}", gate.Require(domain.OpDeleteSeminar, c.Seminars.DeleteSeminar))
	mux.HandleFunc("POST /seminars/{id}/qr", gate.Require(domain.OpGenerateQRCode, c.Seminars.GenerateQRCode))
	mux.HandleFunc("GET /agent/seminars", gate.Require(domain.OpListSeminarsWithAttendees, c.Seminars.ListSeminarsWithAttendees))
	mux.HandleFunc("GET /attendee/seminars", gate.Require(domain.OpListConfirmedSeminars, c.Seminars.ListConfirmedSeminars))

	// Invitations
	mux.HandleFunc("POST /invitations/send", gate.Require(domain.OpSendInvitations, c.Invitations.SendInvitations))
	mux.HandleFunc("POST /invitations/rsvp", gate.Require(domain.OpRSVP, c.Invitations.RSVP))
	mux.HandleFunc("GET /invitations", gate.Require(domain.OpListInvitations, c.Invitations.ListInvitations))
	mux.HandleFunc("GET /invitations/{id}", gate.Require(domain.OpGetInvitation, c.Invitations.GetInvitation))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Wrap applies the request-scoped middleware in order: request id, logging, CORS.
func Wrap(h http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, h)))
}

func health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
