package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/booking/mocks"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/event"
	"gatherguru/pkg/handlers"
)

func TestBook(t *testing.T) {
	m := new(mocks.Service)
	handler := handlers.NewBookingHandler(m, quietLogger())

	t.Run("quantity defaults to one", func(t *testing.T) {
		m.On("Book", mock.Anything, "u1", "e1", 1).
			Return(&booking.Booking{ID: "b1", EventID: "e1", Quantity: 1, Status: booking.StatusPending}, nil).Once()

		resp := httptest.NewRecorder()
		handler.Book(resp, as(jsonRequest(http.MethodPost, "/api/bookings", `{"eventId":"e1"}`), "u1", claims.RoleUser))

		assert.Equal(t, http.StatusCreated, resp.Code)
		var b booking.Booking
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &b))
		assert.Equal(t, booking.StatusPending, b.Status)
	})

	t.Run("sold out", func(t *testing.T) {
		m.On("Book", mock.Anything, "u1", "e1", 4).Return(nil, event.ErrSoldOut).Once()

		resp := httptest.NewRecorder()
		handler.Book(resp, as(jsonRequest(http.MethodPost, "/api/bookings", `{"eventId":"e1","quantity":4}`), "u1", claims.RoleUser))

		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "not enough tickets left", decode(t, resp).Message)
	})
}

func TestCancelBooking(t *testing.T) {
	m := new(mocks.Service)
	handler := handlers.NewBookingHandler(m, quietLogger())

	m.On("Cancel", mock.Anything, "u2", "b1").Return(nil, booking.ErrNotOwner)
	m.On("Cancel", mock.Anything, "u1", "b1").Return(&booking.Booking{ID: "b1", Status: booking.StatusCancelled}, nil)

	resp := httptest.NewRecorder()
	handler.Cancel(resp, withID(as(httptest.NewRequest(http.MethodDelete, "/api/bookings/b1", nil), "u2", claims.RoleUser), "b1"))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = httptest.NewRecorder()
	handler.Cancel(resp, withID(as(httptest.NewRequest(http.MethodDelete, "/api/bookings/b1", nil), "u1", claims.RoleUser), "b1"))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMyBookings(t *testing.T) {
	m := new(mocks.Service)
	handler := handlers.NewBookingHandler(m, quietLogger())
	m.On("ListByUser", mock.Anything, "u1").Return([]*booking.Booking{{ID: "b1"}, {ID: "b2"}}, nil)

	resp := httptest.NewRecorder()
	handler.Mine(resp, as(httptest.NewRequest(http.MethodGet, "/api/bookings/my", nil), "u1", claims.RoleUser))

	assert.Equal(t, http.StatusOK, resp.Code)
	var list []booking.Booking
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &list))
	assert.Len(t, list, 2)
}
