//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/domain/venue"
	"locker-booking/internal/infra/memstore"
	"locker-booking/internal/pkg/clock"
	"locker-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var base = time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

type BookingCommandsTestSuite struct {
	suite.Suite
	store    *memstore.Store
	clock    *clock.MockClock
	commands commands.BookingCommands
	venueID  uuid.UUID
	userID   uuid.UUID
	ctx      context.Context
}

func (s *BookingCommandsTestSuite) SetupTest() {
	s.store = memstore.New()
	s.clock = clock.NewMockClock(base)
	s.commands = commands.NewBookingCommands(s.store, s.store, s.clock, 15*time.Minute)
	s.venueID = uuid.New()
	s.userID = uuid.New()
	s.ctx = context.Background()

	v, err := venue.NewVenue(s.venueID, "Central Station Lockers", 10)
	s.Require().NoError(err)
	s.store.SeedVenue(v)
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsTestSuite))
}

func (s *BookingCommandsTestSuite) params(locker int32, startOffset, endOffset time.Duration) commands.CreateBookingParams {
	return commands.CreateBookingParams{
		VenueID:      s.venueID,
		LockerNumber: locker,
		StartTime:    base.Add(startOffset),
		EndTime:      base.Add(endOffset),
		UserID:       s.userID,
	}
}

// ================================================================================
// CreateBooking
// ================================================================================

func (s *BookingCommandsTestSuite) TestCreateBooking() {
	s.Run("creates a confirmed booking with an access code", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(3, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		s.Equal(booking.StatusConfirmed, b.Status())
		s.Equal(booking.PaymentPending, b.PaymentStatus())
		s.Len(b.AccessCode(), 6)
		s.Equal(base, b.CreatedAt())

		stored, err := s.store.FindByID(s.ctx, b.ID())
		s.Require().NoError(err)
		s.Equal(b.ID(), stored.ID())
	})

	s.Run("allows a rental of exactly the maximum duration", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(4, time.Hour, time.Hour+booking.MaxRentalDuration))
		s.NoError(err)
	})

	s.Run("rejects a rental longer than the maximum duration", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(5, time.Hour, time.Hour+booking.MaxRentalDuration+time.Minute))
		s.ErrorIs(err, commands.ErrDurationExceeded)
	})

	s.Run("rejects an empty interval", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(5, time.Hour, time.Hour))
		s.ErrorIs(err, commands.ErrInvalidTimeSlot)
	})

	s.Run("rejects an inverted interval", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(5, 2*time.Hour, time.Hour))
		s.ErrorIs(err, commands.ErrInvalidTimeSlot)
	})

	s.Run("rejects an unknown venue", func() {
		params := s.params(1, time.Hour, 2*time.Hour)
		params.VenueID = uuid.New()
		_, err := s.commands.CreateBooking(s.ctx, params)
		s.ErrorIs(err, commands.ErrVenueNotFound)
	})

	s.Run("rejects a locker number above the venue's range", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(11, time.Hour, 2*time.Hour))
		s.ErrorIs(err, commands.ErrInvalidLocker)
	})

	s.Run("rejects a non-positive locker number", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(0, time.Hour, 2*time.Hour))
		s.ErrorIs(err, commands.ErrInvalidLocker)
	})
}

func (s *BookingCommandsTestSuite) TestCreateBookingConflicts() {
	_, err := s.commands.CreateBooking(s.ctx, s.params(1, 2*time.Hour, 4*time.Hour))
	s.Require().NoError(err)

	s.Run("rejects an overlapping interval on the same locker", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(1, 3*time.Hour, 5*time.Hour))
		s.ErrorIs(err, commands.ErrLockerConflict)
	})

	s.Run("rejects a contained interval on the same locker", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(1, 2*time.Hour+30*time.Minute, 3*time.Hour))
		s.ErrorIs(err, commands.ErrLockerConflict)
	})

	s.Run("rejects a back-to-back interval sharing the boundary instant", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(1, 4*time.Hour, 6*time.Hour))
		s.ErrorIs(err, commands.ErrLockerConflict)
	})

	s.Run("allows an interval separated by one second", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(1, 4*time.Hour+time.Second, 6*time.Hour))
		s.NoError(err)
	})

	s.Run("allows the same interval on a different locker", func() {
		_, err := s.commands.CreateBooking(s.ctx, s.params(2, 2*time.Hour, 4*time.Hour))
		s.NoError(err)
	})

	s.Run("allows rebooking over a cancelled interval", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(3, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		_, err = s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "changed plans")
		s.Require().NoError(err)

		_, err = s.commands.CreateBooking(s.ctx, s.params(3, 2*time.Hour, 4*time.Hour))
		s.NoError(err)
	})
}

func (s *BookingCommandsTestSuite) TestCreateBookingConcurrency() {
	const workers = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			params := s.params(7, 2*time.Hour, 4*time.Hour)
			params.UserID = uuid.New()
			_, err := s.commands.CreateBooking(s.ctx, params)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case s.ErrorIs(err, commands.ErrLockerConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded, "exactly one concurrent create may win")
	s.Equal(workers-1, conflicts)

	overlapping, err := s.store.FindOverlapping(s.ctx, s.venueID, 7, mustSlot(s.T(), 2*time.Hour, 4*time.Hour))
	s.Require().NoError(err)
	s.Len(overlapping, 1, "store must hold a single occupying booking")
}

// ================================================================================
// CancelBooking
// ================================================================================

func (s *BookingCommandsTestSuite) TestCancelBooking() {
	s.Run("owner cancels well before start", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(1, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		cancelled, err := s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "missed the train")
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, cancelled.Status())
		s.Equal("missed the train", cancelled.CancellationReason())
		s.Require().NotNil(cancelled.CancelledAt())
		s.Equal(base, *cancelled.CancelledAt())
	})

	s.Run("cancellation at exactly one hour before start is allowed", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(2, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		s.clock.Set(base.Add(time.Hour)) // exactly CancellationWindow before start
		_, err = s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "")
		s.NoError(err)
		s.clock.Set(base)
	})

	s.Run("cancellation closer than one hour to start is rejected", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(3, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		s.clock.Set(base.Add(time.Hour + time.Second))
		_, err = s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "")
		s.ErrorIs(err, commands.ErrCancellationWindowClosed)
		s.clock.Set(base)
	})

	s.Run("another user may not cancel", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(4, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		_, err = s.commands.CancelBooking(s.ctx, b.ID(), uuid.New(), "")
		s.ErrorIs(err, commands.ErrForbidden)
	})

	s.Run("cancelling twice fails on the terminal state", func() {
		b, err := s.commands.CreateBooking(s.ctx, s.params(5, 2*time.Hour, 4*time.Hour))
		s.Require().NoError(err)

		_, err = s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "")
		s.Require().NoError(err)

		_, err = s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "")
		s.ErrorIs(err, commands.ErrAlreadyTerminal)
	})

	s.Run("unknown booking", func() {
		_, err := s.commands.CancelBooking(s.ctx, uuid.New(), s.userID, "")
		s.ErrorIs(err, commands.ErrBookingNotFound)
	})
}

// ================================================================================
// UpdateBooking
// ================================================================================

func (s *BookingCommandsTestSuite) TestUpdateBooking() {
	s.Run("confirmed to active stamps check-in", func() {
		b := s.createDefault(1)

		updated, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusActive))
		s.Require().NoError(err)
		s.Equal(booking.StatusActive, updated.Status())
		s.Require().NotNil(updated.CheckedInAt())
		s.Equal(base, *updated.CheckedInAt())
	})

	s.Run("active to completed stamps check-out", func() {
		b := s.createDefault(2)
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusActive))
		s.Require().NoError(err)

		updated, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusCompleted))
		s.Require().NoError(err)
		s.Equal(booking.StatusCompleted, updated.Status())
		s.NotNil(updated.CheckedOutAt())
	})

	s.Run("active may only advance to completed", func() {
		b := s.createDefault(3)
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusActive))
		s.Require().NoError(err)

		for _, to := range []booking.Status{booking.StatusPending, booking.StatusConfirmed, booking.StatusCancelled, booking.StatusExpired} {
			_, err = s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(to))
			s.ErrorIs(err, commands.ErrInvalidTransition, "active -> %s", to)
		}
	})

	s.Run("cancelling an active booking is the cancel operation's job", func() {
		b := s.createDefault(8)
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusActive))
		s.Require().NoError(err)

		// A status patch must not sidestep ownership and window checks.
		_, err = s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusCancelled))
		s.ErrorIs(err, commands.ErrInvalidTransition)

		cancelled, err := s.commands.CancelBooking(s.ctx, b.ID(), s.userID, "")
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, cancelled.Status())
	})

	s.Run("terminal statuses admit no further transitions", func() {
		b := s.createDefault(4)
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusCancelled))
		s.Require().NoError(err)

		for _, to := range []booking.Status{booking.StatusPending, booking.StatusConfirmed, booking.StatusActive, booking.StatusCompleted} {
			_, err = s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(to))
			s.ErrorIs(err, commands.ErrInvalidTransition, "cancelled -> %s", to)
		}
	})

	s.Run("unknown status value", func() {
		b := s.createDefault(5)
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.Status("parked")))
		s.ErrorIs(err, commands.ErrInvalidStatus)
	})

	s.Run("payment status and note update without touching status", func() {
		b := s.createDefault(6)
		paid := booking.PaymentCompleted
		note := "  left luggage  "

		updated, err := s.commands.UpdateBooking(s.ctx, b.ID(), commands.UpdateBookingPatch{
			PaymentStatus: &paid,
			Note:          &note,
		})
		s.Require().NoError(err)
		s.Equal(booking.StatusConfirmed, updated.Status())
		s.Equal(booking.PaymentCompleted, updated.PaymentStatus())
		s.Equal("left luggage", updated.Note().String())
	})

	s.Run("unknown booking", func() {
		_, err := s.commands.UpdateBooking(s.ctx, uuid.New(), patchStatus(booking.StatusActive))
		s.ErrorIs(err, commands.ErrBookingNotFound)
	})
}

// ================================================================================
// RunExpirySweep
// ================================================================================

func (s *BookingCommandsTestSuite) TestRunExpirySweep() {
	s.Run("completes elapsed active bookings", func() {
		b := s.createDefault(1) // runs base+2h .. base+4h
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusActive))
		s.Require().NoError(err)

		s.clock.Set(base.Add(5 * time.Hour))
		result, err := s.commands.RunExpirySweep(s.ctx)
		s.Require().NoError(err)
		s.Equal(int64(1), result.Completed)

		stored, err := s.store.FindByID(s.ctx, b.ID())
		s.Require().NoError(err)
		s.Equal(booking.StatusCompleted, stored.Status())
		s.NotNil(stored.CheckedOutAt())
	})

	s.Run("re-running the sweep is a no-op", func() {
		result, err := s.commands.RunExpirySweep(s.ctx)
		s.Require().NoError(err)
		s.Zero(result.Completed)
		s.Zero(result.Cancelled)
	})

	s.Run("active bookings still inside their interval survive", func() {
		s.clock.Set(base)
		b := s.createDefault(2)
		_, err := s.commands.UpdateBooking(s.ctx, b.ID(), patchStatus(booking.StatusActive))
		s.Require().NoError(err)

		s.clock.Set(base.Add(3 * time.Hour)) // inside base+2h..base+4h
		result, err := s.commands.RunExpirySweep(s.ctx)
		s.Require().NoError(err)
		s.Zero(result.Completed)
	})

	s.Run("cancels pending bookings older than the stale cutoff", func() {
		s.clock.Set(base)
		fresh := s.seedPending(3, base.Add(-14*time.Minute))
		stale := s.seedPending(4, base.Add(-16*time.Minute))

		result, err := s.commands.RunExpirySweep(s.ctx)
		s.Require().NoError(err)
		s.Equal(int64(1), result.Cancelled)

		freshStored, err := s.store.FindByID(s.ctx, fresh)
		s.Require().NoError(err)
		s.Equal(booking.StatusPending, freshStored.Status())

		staleStored, err := s.store.FindByID(s.ctx, stale)
		s.Require().NoError(err)
		s.Equal(booking.StatusCancelled, staleStored.Status())
	})

	s.Run("confirmed bookings are never completed by the sweep", func() {
		s.clock.Set(base)
		b := s.createDefault(5)

		s.clock.Set(base.Add(48 * time.Hour))
		_, err := s.commands.RunExpirySweep(s.ctx)
		s.Require().NoError(err)

		stored, err := s.store.FindByID(s.ctx, b.ID())
		s.Require().NoError(err)
		s.Equal(booking.StatusConfirmed, stored.Status())
	})
}

// ---- helpers ----

func (s *BookingCommandsTestSuite) createDefault(locker int32) *booking.Booking {
	s.T().Helper()
	b, err := s.commands.CreateBooking(s.ctx, s.params(locker, 2*time.Hour, 4*time.Hour))
	s.Require().NoError(err)
	return b
}

// seedPending stores a pending booking created at the given instant, the way
// one would exist if a payment flow had stalled before confirmation.
func (s *BookingCommandsTestSuite) seedPending(locker int32, createdAt time.Time) uuid.UUID {
	s.T().Helper()
	slot := mustSlot(s.T(), 2*time.Hour, 4*time.Hour)
	b := booking.ReconstructBooking(
		uuid.New(), s.venueID, s.userID, locker,
		slot, booking.StatusPending, booking.PaymentPending, "123456",
		booking.NewNote(""), "",
		createdAt, createdAt,
		nil, nil, nil,
	)
	s.Require().NoError(s.store.Create(s.ctx, b))
	return b.ID()
}

func mustSlot(t *testing.T, startOffset, endOffset time.Duration) booking.TimeSlot {
	t.Helper()
	slot, err := booking.NewTimeSlot(base.Add(startOffset), base.Add(endOffset))
	if err != nil {
		t.Fatalf("building time slot: %v", err)
	}
	return slot
}

func patchStatus(status booking.Status) commands.UpdateBookingPatch {
	return commands.UpdateBookingPatch{Status: &status}
}
