//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/domain/venue"
	"locker-booking/internal/infra/memstore"
	"locker-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var base = time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

type BookingQueriesTestSuite struct {
	suite.Suite
	store   *memstore.Store
	queries queries.BookingQueries
	venueID uuid.UUID
	ctx     context.Context
}

func (s *BookingQueriesTestSuite) SetupTest() {
	s.store = memstore.New()
	s.queries = queries.NewBookingQueries(s.store.Reads(), s.store)
	s.venueID = uuid.New()
	s.ctx = context.Background()

	v, err := venue.NewVenue(s.venueID, "Harbor Locker Hall", 4)
	s.Require().NoError(err)
	s.store.SeedVenue(v)
}

func TestBookingQueriesSuite(t *testing.T) {
	suite.Run(t, new(BookingQueriesTestSuite))
}

// seed stores a booking with the given locker, interval and status.
func (s *BookingQueriesTestSuite) seed(locker int32, startOffset, endOffset time.Duration, status booking.Status) *booking.Booking {
	s.T().Helper()
	return s.seedFor(uuid.New(), s.venueID, locker, startOffset, endOffset, status, base)
}

func (s *BookingQueriesTestSuite) seedFor(userID, venueID uuid.UUID, locker int32, startOffset, endOffset time.Duration, status booking.Status, createdAt time.Time) *booking.Booking {
	s.T().Helper()
	slot, err := booking.NewTimeSlot(base.Add(startOffset), base.Add(endOffset))
	s.Require().NoError(err)

	b := booking.ReconstructBooking(
		uuid.New(), venueID, userID, locker,
		slot, status, booking.PaymentPending, "123456",
		booking.NewNote(""), "",
		createdAt, createdAt,
		nil, nil, nil,
	)
	s.Require().NoError(s.store.Create(s.ctx, b))
	return b
}

// ================================================================================
// AvailableLockers
// ================================================================================

func (s *BookingQueriesTestSuite) TestAvailableLockers() {
	s.Run("empty venue offers every locker in ascending order", func() {
		lockers, err := s.queries.AvailableLockers(s.ctx, s.venueID, base, base.Add(2*time.Hour))
		s.Require().NoError(err)
		s.Equal([]int32{1, 2, 3, 4}, lockers)
	})

	s.Run("occupying bookings remove their locker", func() {
		s.seed(2, 0, 2*time.Hour, booking.StatusConfirmed)
		s.seed(4, time.Hour, 3*time.Hour, booking.StatusActive)

		lockers, err := s.queries.AvailableLockers(s.ctx, s.venueID, base, base.Add(2*time.Hour))
		s.Require().NoError(err)
		s.Equal([]int32{1, 3}, lockers)
	})

	s.Run("non-occupying statuses leave the locker free", func() {
		s.seed(1, 0, 2*time.Hour, booking.StatusCancelled)
		s.seed(3, 0, 2*time.Hour, booking.StatusCompleted)

		lockers, err := s.queries.AvailableLockers(s.ctx, s.venueID, base, base.Add(2*time.Hour))
		s.Require().NoError(err)
		s.Contains(lockers, int32(1))
		s.Contains(lockers, int32(3))
	})

	s.Run("a back-to-back interval still blocks the locker", func() {
		s.seed(1, 0, 2*time.Hour, booking.StatusConfirmed)

		// Query starts exactly where the booking ends; inclusive endpoints touch.
		lockers, err := s.queries.AvailableLockers(s.ctx, s.venueID, base.Add(2*time.Hour), base.Add(4*time.Hour))
		s.Require().NoError(err)
		s.NotContains(lockers, int32(1))
	})

	s.Run("an interval one second clear of the booking frees the locker", func() {
		s.seed(2, 0, 2*time.Hour, booking.StatusConfirmed)

		lockers, err := s.queries.AvailableLockers(s.ctx, s.venueID, base.Add(2*time.Hour+time.Second), base.Add(4*time.Hour))
		s.Require().NoError(err)
		s.Contains(lockers, int32(2))
	})

	s.Run("fully booked venue yields an empty list", func() {
		small := uuid.New()
		v, err := venue.NewVenue(small, "Kiosk", 2)
		s.Require().NoError(err)
		s.store.SeedVenue(v)

		s.seedFor(uuid.New(), small, 1, 0, 2*time.Hour, booking.StatusConfirmed, base)
		s.seedFor(uuid.New(), small, 2, time.Hour, 3*time.Hour, booking.StatusActive, base)

		lockers, err := s.queries.AvailableLockers(s.ctx, small, base, base.Add(90*time.Minute))
		s.Require().NoError(err)
		s.Empty(lockers)
	})

	s.Run("unknown venue", func() {
		_, err := s.queries.AvailableLockers(s.ctx, uuid.New(), base, base.Add(time.Hour))
		s.ErrorIs(err, queries.ErrVenueNotFound)
	})

	s.Run("invalid interval", func() {
		_, err := s.queries.AvailableLockers(s.ctx, s.venueID, base.Add(time.Hour), base)
		s.ErrorIs(err, queries.ErrInvalidTimeSlot)
	})
}

// ================================================================================
// GetBooking / ListBookings
// ================================================================================

func (s *BookingQueriesTestSuite) TestGetBooking() {
	s.Run("returns the view with the venue name joined in", func() {
		b := s.seed(1, 0, 2*time.Hour, booking.StatusConfirmed)

		view, err := s.queries.GetBooking(s.ctx, b.ID())
		s.Require().NoError(err)
		s.Equal(b.ID(), view.ID)
		s.Equal("Harbor Locker Hall", view.VenueName)
		s.Equal("confirmed", view.Status)
		s.Equal(int32(1), view.LockerNumber)
	})

	s.Run("unknown booking", func() {
		_, err := s.queries.GetBooking(s.ctx, uuid.New())
		s.ErrorIs(err, queries.ErrBookingNotFound)
	})
}

func (s *BookingQueriesTestSuite) TestListBookings() {
	alice := uuid.New()
	bob := uuid.New()
	otherVenue := uuid.New()
	v, err := venue.NewVenue(otherVenue, "Annex", 2)
	s.Require().NoError(err)
	s.store.SeedVenue(v)

	s.seedFor(alice, s.venueID, 1, 0, 2*time.Hour, booking.StatusConfirmed, base)
	s.seedFor(alice, otherVenue, 1, 0, 2*time.Hour, booking.StatusCancelled, base.Add(time.Minute))
	s.seedFor(bob, s.venueID, 2, 0, 2*time.Hour, booking.StatusActive, base.Add(2*time.Minute))

	s.Run("no filter returns everything newest first", func() {
		views, err := s.queries.ListBookings(s.ctx, queries.Filter{})
		s.Require().NoError(err)
		s.Require().Len(views, 3)
		s.True(views[0].CreatedAt.After(views[1].CreatedAt))
		s.True(views[1].CreatedAt.After(views[2].CreatedAt))
	})

	s.Run("filter by user", func() {
		views, err := s.queries.ListByUser(s.ctx, alice)
		s.Require().NoError(err)
		s.Len(views, 2)
		for _, view := range views {
			s.Equal(alice, view.UserID)
		}
	})

	s.Run("filter by venue", func() {
		views, err := s.queries.ListByVenue(s.ctx, otherVenue)
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal("Annex", views[0].VenueName)
	})

	s.Run("filters compose", func() {
		status := booking.StatusActive
		views, err := s.queries.ListBookings(s.ctx, queries.Filter{
			UserID: &bob,
			Status: &status,
		})
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal(bob, views[0].UserID)
	})

	s.Run("start time window filter", func() {
		from := base.Add(-time.Hour)
		to := base.Add(time.Hour)
		views, err := s.queries.ListBookings(s.ctx, queries.Filter{From: &from, To: &to})
		s.Require().NoError(err)
		s.Len(views, 3)

		outside := base.Add(3 * time.Hour)
		views, err = s.queries.ListBookings(s.ctx, queries.Filter{From: &outside})
		s.Require().NoError(err)
		s.Empty(views)
	})
}
