package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"gatherguru/pkg/authstate"
	"gatherguru/pkg/booking"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/event"
	"gatherguru/pkg/payment"
	"gatherguru/pkg/user"
)

// RegisterRequest is the payload for creating an attendee or organizer account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// EventRequest is the payload for creating or editing an event.
type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"startsAt"`
	Price       int64     `json:"price"`
	Capacity    int       `json:"capacity"`
	Image       string    `json:"image,omitempty"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users      int   `json:"users"`
	Organizers int   `json:"organizers"`
	Events     int64 `json:"events"`
	Bookings   int64 `json:"bookings"`
}

type authResponse struct {
	Token string      `json:"token"`
	Role  claims.Role `json:"role"`
	User  user.User   `json:"user"`
}

func loginEndpoint(role claims.Role) string {
	switch role {
	case claims.RoleAdmin:
		return "/api/admin/login"
	case claims.RoleOrganizer:
		return "/api/organizer/login"
	}
	return "/api/auth/login"
}

func sessionUser(u user.User) authstate.User {
	return authstate.User{ID: u.ID, Name: u.Name, Email: u.Email, ProfileImage: u.ProfileImage}
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*user.User, error) {
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	var resp authResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		c.store.SetError(err)
		return nil, err
	}
	if err := c.store.Login(resp.Token, resp.Role, sessionUser(resp.User)); err != nil {
		c.store.SetError(err)
		return nil, err
	}
	return &resp.User, nil
}

// Login signs in through the login form of role.
func (c *Client) Login(ctx context.Context, role claims.Role, email, password string) (*user.User, error) {
	u, err := c.authenticate(ctx, loginEndpoint(role), map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return u, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	u, err := c.authenticate(ctx, "/api/auth/register", req)
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return u, nil
}

// Logout ends the server session and always clears local state, even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.store.Snapshot().IsAuthenticated {
		err = c.post(ctx, "/api/auth/logout", nil, nil)
	}
	c.store.Logout()
	if err != nil && !IsStatus(err, http.StatusUnauthorized) {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// Profile fetches the signed-in user's profile and refreshes the session's copy of it.
func (c *Client) Profile(ctx context.Context) (*user.User, error) {
	var u user.User
	if err := c.get(ctx, "/api/profile", &u); err != nil {
		return nil, fmt.Errorf("client.Profile: %w", err)
	}
	c.store.SetUser(sessionUser(u))
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name, profileImage string) (*user.User, error) {
	var u user.User
	body := map[string]string{"name": name, "profileImage": profileImage}
	if err := c.doRequest(ctx, http.MethodPut, "/api/profile", body, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	c.store.SetUser(sessionUser(u))
	return &u, nil
}

// Events lists public events.
func (c *Client) Events(ctx context.Context, f event.Filter) ([]event.Event, error) {
	params := url.Values{}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Search != "" {
		params.Set("q", f.Search)
	}
	if f.Upcoming {
		params.Set("upcoming", strconv.FormatBool(true))
	}

	path := "/api/events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var events []event.Event
	if err := c.get(ctx, path, &events); err != nil {
		return nil, fmt.Errorf("client.Events: %w", err)
	}
	return events, nil
}

func (c *Client) Event(ctx context.Context, id string) (*event.Event, error) {
	var ev event.Event
	if err := c.get(ctx, "/api/events/"+url.PathEscape(id), &ev); err != nil {
		return nil, fmt.Errorf("client.Event: %w", err)
	}
	return &ev, nil
}

func (c *Client) CreateEvent(ctx context.Context, req EventRequest) (*event.Event, error) {
	var ev event.Event
	if err := c.post(ctx, "/api/events", req, &ev); err != nil {
		return nil, fmt.Errorf("client.CreateEvent: %w", err)
	}
	return &ev, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, req EventRequest) (*event.Event, error) {
	var ev event.Event
	if err := c.doRequest(ctx, http.MethodPut, "/api/events/"+url.PathEscape(id), req, &ev); err != nil {
		return nil, fmt.Errorf("client.UpdateEvent: %w", err)
	}
	return &ev, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteEvent: %w", err)
	}
	return nil
}

// MyEvents lists the signed-in organizer's events.
func (c *Client) MyEvents(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	if err := c.get(ctx, "/api/organizer/events", &events); err != nil {
		return nil, fmt.Errorf("client.MyEvents: %w", err)
	}
	return events, nil
}

func (c *Client) EventBookings(ctx context.Context, eventID string) ([]booking.Booking, error) {
	var bookings []booking.Booking
	if err := c.get(ctx, "/api/organizer/events/"+url.PathEscape(eventID)+"/bookings", &bookings); err != nil {
		return nil, fmt.Errorf("client.EventBookings: %w", err)
	}
	return bookings, nil
}

// Book reserves tickets. A booking that still needs payment is remembered as the current one.
func (c *Client) Book(ctx context.Context, eventID string, qty int) (*booking.Booking, error) {
	var b booking.Booking
	if err := c.post(ctx, "/api/bookings", map[string]any{"eventId": eventID, "quantity": qty}, &b); err != nil {
		return nil, fmt.Errorf("client.Book: %w", err)
	}
	if b.Status == booking.StatusPending && c.prefs != nil {
		if err := c.prefs.SetCurrentBooking(b.ID); err != nil {
			c.logger.Warn("current booking not saved", "booking", b.ID, "error", err)
		}
	}
	return &b, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]booking.Booking, error) {
	var bookings []booking.Booking
	if err := c.get(ctx, "/api/bookings/my", &bookings); err != nil {
		return nil, fmt.Errorf("client.MyBookings: %w", err)
	}
	return bookings, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) (*booking.Booking, error) {
	var b booking.Booking
	if err := c.doRequest(ctx, http.MethodDelete, "/api/bookings/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, fmt.Errorf("client.CancelBooking: %w", err)
	}
	return &b, nil
}

// CreatePaymentIntent starts paying for a booking. An empty bookingID means the current one.
func (c *Client) CreatePaymentIntent(ctx context.Context, bookingID string) (*payment.Intent, error) {
	bookingID, err := c.bookingOrCurrent(bookingID)
	if err != nil {
		return nil, fmt.Errorf("client.CreatePaymentIntent: %w", err)
	}
	var intent payment.Intent
	if err := c.post(ctx, "/api/payments/stripe/intent", map[string]string{"bookingId": bookingID}, &intent); err != nil {
		return nil, fmt.Errorf("client.CreatePaymentIntent: %w", err)
	}
	return &intent, nil
}

// ConfirmPayment reports a completed payment and forgets the current booking.
func (c *Client) ConfirmPayment(ctx context.Context, bookingID, intentID string) (*booking.Booking, error) {
	bookingID, err := c.bookingOrCurrent(bookingID)
	if err != nil {
		return nil, fmt.Errorf("client.ConfirmPayment: %w", err)
	}
	var b booking.Booking
	body := map[string]string{"bookingId": bookingID, "paymentIntentId": intentID}
	if err := c.post(ctx, "/api/payments/stripe/confirm", body, &b); err != nil {
		return nil, fmt.Errorf("client.ConfirmPayment: %w", err)
	}
	if c.prefs != nil && c.prefs.CurrentBooking() == bookingID {
		if err := c.prefs.ClearCurrentBooking(); err != nil {
			c.logger.Warn("current booking not cleared", "booking", bookingID, "error", err)
		}
	}
	return &b, nil
}

var errNoCurrentBooking = errors.New("no booking in progress")

func (c *Client) bookingOrCurrent(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if c.prefs != nil {
		if cur := c.prefs.CurrentBooking(); cur != "" {
			return cur, nil
		}
	}
	return "", errNoCurrentBooking
}

func (c *Client) Users(ctx context.Context, role claims.Role) ([]user.User, error) {
	var users []user.User
	if err := c.get(ctx, "/api/admin/users?role="+url.QueryEscape(role.String()), &users); err != nil {
		return nil, fmt.Errorf("client.Users: %w", err)
	}
	return users, nil
}

func (c *Client) SetUserStatus(ctx context.Context, id string, status user.Status) error {
	body := map[string]string{"status": string(status)}
	if err := c.doRequest(ctx, http.MethodPatch, "/api/admin/users/"+url.PathEscape(id)+"/status", body, nil); err != nil {
		return fmt.Errorf("client.SetUserStatus: %w", err)
	}
	return nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.get(ctx, "/api/admin/stats", &s); err != nil {
		return nil, fmt.Errorf("client.Stats: %w", err)
	}
	return &s, nil
}

// Dashboard is what the signed-in user's landing page shows.
type Dashboard struct {
	User     *user.User
	Bookings []booking.Booking
	Events   []event.Event
	Stats    *Stats
}

// Dashboard loads the landing page for the current role, fetching its parts in parallel.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	role := c.store.Snapshot().Role
	d := &Dashboard{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.User, err = c.Profile(ctx)
		return err
	})
	switch role {
	case claims.RoleAdmin:
		g.Go(func() (err error) {
			d.Stats, err = c.Stats(ctx)
			return err
		})
	case claims.RoleOrganizer:
		g.Go(func() (err error) {
			d.Events, err = c.MyEvents(ctx)
			return err
		})
	default:
		g.Go(func() (err error) {
			d.Bookings, err = c.MyBookings(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
