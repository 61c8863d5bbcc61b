package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gatherguru/pkg/authstate"
	"gatherguru/pkg/booking"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/client"
	"gatherguru/pkg/event"
	"gatherguru/pkg/guard"
)

type appFunc func() *app

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(cents int64) string {
	if cents == 0 {
		return "free"
	}
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// requireSignIn applies the page guard for kind before a command that needs a session.
func requireSignIn(a *app, kind guard.Kind) error {
	if d := guard.Enter(kind, a.store); !d.Allow {
		return fmt.Errorf("not signed in with the right account, see %s", d.Redirect)
	}
	return nil
}

func loginCmd(get appFunc) *cobra.Command {
	var role, email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if d := guard.Enter(guard.AuthPage, a.store); !d.Allow {
				fmt.Fprintf(a.out, "already signed in, dashboard at %s\n", d.Redirect)
				return nil
			}
			r, err := claims.ParseRole(role)
			if err != nil {
				return err
			}
			password := os.Getenv("GATHERGURU_PASSWORD")
			if password == "" {
				return errors.New("set GATHERGURU_PASSWORD to sign in")
			}

			u, err := a.client.Login(cmd.Context(), r, email, password)
			if authstate.IsExpired(err) {
				return fmt.Errorf("the server issued a token that is already expired, check the clock: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s (%s)\n", u.Name, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "user", "account role: user, organizer or admin")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "signed out")
			return nil
		},
	}
}

func whoamiCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(_ *cobra.Command, _ []string) error {
			a := get()
			if !a.store.ValidateSession() {
				fmt.Fprintln(a.out, "not signed in")
				return nil
			}
			s := a.store.Snapshot()
			id, err := authstate.Decode(s.Token, time.Now())
			if err != nil {
				return err
			}
			w := table(a.out)
			fmt.Fprintf(w, "id\t%s\n", s.User.ID)
			fmt.Fprintf(w, "name\t%s\n", s.User.Name)
			fmt.Fprintf(w, "email\t%s\n", s.User.Email)
			fmt.Fprintf(w, "role\t%s\n", s.Role)
			fmt.Fprintf(w, "expires\t%s\n", id.ExpiresAt.Local().Format(time.RFC1123))
			return w.Flush()
		},
	}
}

func dashboardCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the landing page for the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if !a.store.ValidateSession() {
				return errors.New("not signed in")
			}
			d, err := a.client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\n\n", d.User.Name, d.User.Email)
			switch {
			case d.Stats != nil:
				w := table(a.out)
				fmt.Fprintf(w, "attendees\t%d\n", d.Stats.Users)
				fmt.Fprintf(w, "organizers\t%d\n", d.Stats.Organizers)
				fmt.Fprintf(w, "events\t%d\n", d.Stats.Events)
				fmt.Fprintf(w, "bookings\t%d\n", d.Stats.Bookings)
				return w.Flush()
			case d.Events != nil:
				return printEvents(a.out, d.Events)
			default:
				return printBookings(a.out, d.Bookings)
			}
		},
	}
}

func printEvents(out io.Writer, events []event.Event) error {
	w := table(out)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSTARTS\tPRICE\tLEFT")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.ID, e.Title, e.Category, e.StartsAt.Local().Format("2006-01-02 15:04"), money(e.Price), e.Available())
	}
	return w.Flush()
}

func printBookings(out io.Writer, bookings []booking.Booking) error {
	w := table(out)
	fmt.Fprintln(w, "ID\tEVENT\tQTY\tAMOUNT\tSTATUS\tTICKET")
	for _, b := range bookings {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", b.ID, b.EventID, b.Quantity, money(b.Amount), b.Status, b.TicketCode)
	}
	return w.Flush()
}

func eventsCmd(get appFunc) *cobra.Command {
	var f event.Filter
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			events, err := a.client.Events(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printEvents(a.out, events)
		},
	}
	cmd.Flags().StringVar(&f.Category, "category", "", "only this category")
	cmd.Flags().StringVarP(&f.Search, "search", "q", "", "search titles and descriptions")
	cmd.Flags().BoolVar(&f.Upcoming, "upcoming", false, "hide events that already started")
	return cmd
}

func bookCmd(get appFunc) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "book EVENT_ID",
		Short: "Book tickets for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireSignIn(a, guard.User); err != nil {
				return err
			}
			b, err := a.client.Book(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "booking %s is %s, ticket %s\n", b.ID, b.Status, b.TicketCode)
			if b.Status == booking.StatusPending {
				fmt.Fprintf(a.out, "amount due %s, run `pay` to settle it\n", money(b.Amount))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "number of tickets")
	return cmd
}

func bookingsCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireSignIn(a, guard.User); err != nil {
				return err
			}
			bookings, err := a.client.MyBookings(cmd.Context())
			if err != nil {
				return err
			}
			return printBookings(a.out, bookings)
		},
	}
}

func cancelCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel BOOKING_ID",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireSignIn(a, guard.User); err != nil {
				return err
			}
			b, err := a.client.CancelBooking(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "booking %s is %s\n", b.ID, b.Status)
			return nil
		},
	}
}

// payCmd opens a payment for a booking, or with --intent confirms one paid elsewhere.
func payCmd(get appFunc) *cobra.Command {
	var bookingID, intentID string
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay for a pending booking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireSignIn(a, guard.User); err != nil {
				return err
			}
			if intentID != "" {
				b, err := a.client.ConfirmPayment(cmd.Context(), bookingID, intentID)
				if client.IsStatus(err, http.StatusPaymentRequired) {
					return errors.New("the payment has not gone through yet")
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "booking %s is %s\n", b.ID, b.Status)
				return nil
			}

			intent, err := a.client.CreatePaymentIntent(cmd.Context(), bookingID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "payment %s for %s %s\n", intent.ID, money(intent.Amount), intent.Currency)
			fmt.Fprintf(a.out, "client secret %s\n", intent.ClientSecret)
			fmt.Fprintln(a.out, "complete it with Stripe, then run `pay --intent` with the payment id")
			return nil
		},
	}
	cmd.Flags().StringVar(&bookingID, "booking", "", "booking to pay, defaults to the last one booked")
	cmd.Flags().StringVar(&intentID, "intent", "", "confirm this payment intent")
	return cmd
}

func textSizeCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "textsize [PERCENT]",
		Short: "Show or set the preferred text size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := get()
			if len(args) == 0 {
				fmt.Fprintf(a.out, "%d%%\n", a.prefs.TextSize())
				return nil
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("text size must be a number: %w", err)
			}
			stored, err := a.prefs.SetTextSize(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "text size set to %d%%\n", stored)
			return nil
		},
	}
}
