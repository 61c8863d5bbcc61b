package booking_test

import (
	"context"
	"testing"
	"time"

	"gatherguru/pkg/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "gatherguru.bookings"

func bookingDoc(id string, status booking.Status) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "ticketCode", Value: "GG-ABCDEFGH"},
		{Key: "eventId", Value: "e1"},
		{Key: "userId", Value: "u1"},
		{Key: "quantity", Value: 2},
		{Key: "amount", Value: int64(3000)},
		{Key: "status", Value: string(status)},
		{Key: "createdAt", Value: time.Now()},
	}
}

func TestGetByIDRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookingDoc("b1", booking.StatusPending)))
		repo := booking.NewMongoRepo(mt.DB)

		b, err := repo.GetByID(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, "b1", b.ID)
		assert.Equal(t, booking.StatusPending, b.Status)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := booking.NewMongoRepo(mt.DB)

		_, err := repo.GetByID(context.Background(), "b1")
		assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	})
}

func TestListByUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bookingDoc("b1", booking.StatusPending),
			bookingDoc("b2", booking.StatusConfirmed),
		))
		repo := booking.NewMongoRepo(mt.DB)

		list, err := repo.ListByUser(context.Background(), "u1")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	mt.Run("empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := booking.NewMongoRepo(mt.DB)

		list, err := repo.ListByEvent(context.Background(), "e1")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}

func TestTransitionRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bookingDoc("b1", booking.StatusConfirmed)}))
		repo := booking.NewMongoRepo(mt.DB)

		b, err := repo.Transition(context.Background(), "b1", booking.StatusPending, booking.StatusConfirmed, "pi_1")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, b.Status)
	})

	mt.Run("status moved on", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookingDoc("b1", booking.StatusCancelled)),
		)
		repo := booking.NewMongoRepo(mt.DB)

		_, err := repo.Transition(context.Background(), "b1", booking.StatusPending, booking.StatusConfirmed, "pi_1")
		assert.ErrorIs(t, err, booking.ErrNotPending)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)
		repo := booking.NewMongoRepo(mt.DB)

		_, err := repo.Transition(context.Background(), "b1", booking.StatusPending, booking.StatusCancelled, "")
		assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	})
}

func TestSetPaymentIntentRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		repo := booking.NewMongoRepo(mt.DB)

		assert.NoError(t, repo.SetPaymentIntent(context.Background(), "b1", "pi_1"))
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := booking.NewMongoRepo(mt.DB)

		assert.ErrorIs(t, repo.SetPaymentIntent(context.Background(), "b1", "pi_1"), booking.ErrBookingNotFound)
	})
}
