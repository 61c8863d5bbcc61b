package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/event"
	"gatherguru/pkg/guard"
	"gatherguru/pkg/handlers"
	"gatherguru/pkg/middleware"
	"gatherguru/pkg/payment"
	"gatherguru/pkg/session"
	"gatherguru/pkg/user"
)

const shutdownTimeout = 10 * time.Second

// Deps is everything the router hands out to handlers. Payments may be nil when Stripe is not configured.
type Deps struct {
	Secret    []byte
	Users     user.ServiceInterface
	Sessions  session.Repository
	Events    event.ServiceInterface
	Bookings  booking.ServiceInterface
	Payments  payment.ServiceInterface
	Limiter   *middleware.LoginLimiter
	StaticDir string
	Logger    *slog.Logger
}

// PublicRoutes are the API endpoints callable without a token.
var PublicRoutes = middleware.PublicRoutes{
	"/api/auth/register":           http.MethodPost,
	"/api/auth/login":              http.MethodPost,
	"/api/organizer/login":         http.MethodPost,
	"/api/admin/login":             http.MethodPost,
	"/api/events":                  http.MethodGet,
	"/api/events/{id}":             http.MethodGet,
	"/api/payments/stripe/webhook": http.MethodPost,
}

func NewRouter(d Deps) *mux.Router {
	if d.Limiter == nil {
		d.Limiter = middleware.DefaultLoginLimiter()
	}
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Panic(d.Logger))
	api.Use(middleware.CheckJWT(d.Secret, PublicRoutes, d.Sessions, d.Users, d.Logger))

	InitRoutes(api, d)
	ServeStaticFiles(r, d.StaticDir)
	ServePages(r, d.StaticDir, d.Logger)
	ServeFallback(r, d.StaticDir, d.Logger)
	return r
}

func InitRoutes(api *mux.Router, d Deps) {
	userHandler := handlers.NewUserHandler(d.Users, d.Secret, d.Logger)
	eventHandler := handlers.NewEventHandler(d.Events, d.Bookings, d.Logger)
	bookingHandler := handlers.NewBookingHandler(d.Bookings, d.Logger)
	adminHandler := handlers.NewAdminHandler(d.Users, d.Events, d.Bookings, d.Logger)

	organizer := middleware.RequireRole(claims.RoleOrganizer)
	attendee := middleware.RequireRole(claims.RoleUser)
	admin := middleware.RequireRole(claims.RoleAdmin)
	limit := d.Limiter.Middleware

	/* auth routers */
	api.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	api.Handle("/auth/login", limit(userHandler.Login(claims.RoleUser))).Methods("POST")
	api.Handle("/organizer/login", limit(userHandler.Login(claims.RoleOrganizer))).Methods("POST")
	api.Handle("/admin/login", limit(userHandler.Login(claims.RoleAdmin))).Methods("POST")
	api.HandleFunc("/auth/logout", userHandler.Logout).Methods("POST")
	api.HandleFunc("/profile", userHandler.Profile).Methods("GET")
	api.HandleFunc("/profile", userHandler.UpdateProfile).Methods("PUT")

	/* event routers */
	api.HandleFunc("/events", eventHandler.List).Methods("GET")
	api.HandleFunc("/events/{id}", eventHandler.Get).Methods("GET")
	api.Handle("/events", organizer(http.HandlerFunc(eventHandler.Create))).Methods("POST")
	api.Handle("/events/{id}", organizer(http.HandlerFunc(eventHandler.Update))).Methods("PUT")
	api.Handle("/events/{id}", middleware.RequireRole(claims.RoleOrganizer, claims.RoleAdmin)(http.HandlerFunc(eventHandler.Delete))).Methods("DELETE")

	organizerRouter := api.PathPrefix("/organizer").Subrouter()
	organizerRouter.Use(organizer)
	organizerRouter.HandleFunc("/events", eventHandler.ListMine).Methods("GET")
	organizerRouter.HandleFunc("/events/{id}/bookings", eventHandler.ListBookings).Methods("GET")

	/* booking routers */
	bookingRouter := api.PathPrefix("/bookings").Subrouter()
	bookingRouter.Use(attendee)
	bookingRouter.HandleFunc("", bookingHandler.Book).Methods("POST")
	bookingRouter.HandleFunc("/my", bookingHandler.Mine).Methods("GET")
	bookingRouter.HandleFunc("/{id}", bookingHandler.Cancel).Methods("DELETE")

	/* payment routers */
	paymentRouter := api.PathPrefix("/payments/stripe").Subrouter()
	if d.Payments != nil {
		paymentHandler := handlers.NewPaymentHandler(d.Payments, d.Logger)
		paymentRouter.HandleFunc("/webhook", paymentHandler.Webhook).Methods("POST")
		paymentRouter.Handle("/intent", attendee(http.HandlerFunc(paymentHandler.CreateIntent))).Methods("POST")
		paymentRouter.Handle("/confirm", attendee(http.HandlerFunc(paymentHandler.Confirm))).Methods("POST")
	} else {
		paymentRouter.HandleFunc("/webhook", paymentsDisabled).Methods("POST")
		paymentRouter.HandleFunc("/{action:intent|confirm}", paymentsDisabled).Methods("POST")
	}

	/* admin routers */
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(admin)
	adminRouter.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	adminRouter.HandleFunc("/users/{id}/status", adminHandler.SetStatus).Methods("PATCH")
	adminRouter.HandleFunc("/stats", adminHandler.Stats).Methods("GET")
}

func paymentsDisabled(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"success":false,"message":"payments are not configured"}`))
}

func ServeStaticFiles(r *mux.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))
}

// ServePages puts the page guards in front of the dashboard and login pages.
func ServePages(r *mux.Router, dir string, logger *slog.Logger) {
	index := indexHandler(dir)
	pages := []struct {
		prefix string
		kind   guard.Kind
	}{
		{"/admin/", guard.Admin},
		{"/organizer/", guard.Organizer},
		{"/user/", guard.User},
	}

	for _, page := range []string{"/login", "/signup", "/admin-login", "/organizer/login"} {
		r.Handle(page, guard.Middleware(guard.AuthPage, logger)(index)).Methods("GET")
	}
	for _, p := range pages {
		r.PathPrefix(p.prefix).Handler(guard.Middleware(p.kind, logger)(index)).Methods("GET")
	}
}

func indexHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, "html", "index.html"))
	})
}

func ServeFallback(r *mux.Router, dir string, logger *slog.Logger) {
	index := indexHandler(dir)
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			if _, err := w.Write([]byte(`{"success":false,"message":"not found"}`)); err != nil {
				logger.Error("failed to write fallback JSON", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			return
		}
		index.ServeHTTP(w, r)
	})
}

// StartServer serves h on addr until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
