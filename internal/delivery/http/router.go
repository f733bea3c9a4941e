package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "confernet/docs"
	"confernet/internal/delivery/http/controllers"
	"confernet/internal/delivery/http/middleware"
)

// Controllers are the handlers the router dispatches to.
type Controllers struct {
	Base        *controllers.Base
	Account     *controllers.AccountController
	Events      *controllers.EventController
	People      *controllers.PeopleController
	Messages    *controllers.MessageController
	Schedule    *controllers.ScheduleController
	Interaction *controllers.InteractionController

	// Thread is the websocket stream of one chat.
	Thread http.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireSession(logger)

	// Public pages
	mux.HandleFunc("GET /{$}", c.Account.Landing)
	mux.HandleFunc("GET /login", c.Account.LoginPage)
	mux.HandleFunc("POST /login", c.Account.Login)
	mux.HandleFunc("GET /signup", c.Account.SignupPage)
	mux.HandleFunc("POST /signup", c.Account.Signup)

	// Protected pages
	mux.HandleFunc("GET /home", auth(c.Events.Home))
	mux.HandleFunc("GET /home/{eventID}", auth(c.Events.Detail))
	mux.HandleFunc("GET /home/account", auth(c.Account.Account))
	mux.HandleFunc("GET /home/people", auth(c.People.Directory))
	mux.HandleFunc("GET /home/messages", auth(c.Messages.InboxPage))
	mux.HandleFunc("GET /home/messages/{partnerID}", auth(c.Messages.ThreadPage))
	mux.HandleFunc("GET /schedule", auth(c.Schedule.Schedule))
	mux.HandleFunc("GET /my-schedule", auth(c.Schedule.MySchedule))
	mux.HandleFunc("GET /venue", auth(c.Schedule.Venue))
	mux.HandleFunc("GET /session-interaction", auth(c.Interaction.Page))

	// Actions
	mux.HandleFunc("POST /logout", auth(c.Account.Logout))
	mux.HandleFunc("POST /events", auth(c.Events.Create))
	mux.HandleFunc("POST /events/{eventID}", auth(c.Events.Update))
	mux.HandleFunc("POST /events/{eventID}/delete", auth(c.Events.Delete))
	mux.HandleFunc("POST /events/{eventID}/join", auth(c.Events.Join))
	mux.HandleFunc("POST /events/{eventID}/leave", auth(c.Events.Leave))
	mux.HandleFunc("POST /events/{eventID}/bookmark", auth(c.Events.Bookmark))
	mux.HandleFunc("POST /events/{eventID}/unbookmark", auth(c.Events.Unbookmark))
	mux.HandleFunc("POST /events/{eventID}/comments", auth(c.Events.Comment))
	mux.HandleFunc("POST /events/{eventID}/ratings", auth(c.Events.Rate))
	mux.HandleFunc("POST /events/{eventID}/files", auth(c.Events.Upload))
	mux.HandleFunc("POST /events/{eventID}/files/delete", auth(c.Events.DeleteFile))
	mux.HandleFunc("POST /home/messages/{partnerID}", auth(c.Messages.Send))
	mux.HandleFunc("POST /session-interaction", auth(c.Interaction.Submit))

	// JSON polling API
	mux.HandleFunc("GET /api/messages/inbox", auth(c.Messages.Inbox))
	mux.HandleFunc("GET /api/messages/{partnerID}/history", auth(c.Messages.History))
	mux.HandleFunc("POST /api/messages/{partnerID}", auth(c.Messages.SendJSON))

	// Websocket
	mux.HandleFunc("GET /ws/messages/{partnerID}", auth(c.Thread.ServeHTTP))

	// Swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mux
}

// HandlerConfig configures the middleware around the router.
type HandlerConfig struct {
	AllowedOrigins []string
	SecureCookies  bool
}

// NewHandler wraps the router: every request is logged, gets CORS headers and is bound to its
// browser's app instance. Page navigations then pass the gate.
func NewHandler(mux http.Handler, c Controllers, instances middleware.InstanceProvider, cfg HandlerConfig, logger *slog.Logger) http.Handler {
	var h http.Handler = middleware.Gate(http.HandlerFunc(c.Base.Placeholder), mux)
	h = middleware.AppInstance(instances, cfg.SecureCookies, h)
	h = middleware.CORS(cfg.AllowedOrigins, h)
	return middleware.LoggingMiddleware(logger, h)
}
