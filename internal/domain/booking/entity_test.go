//go:build unit

package booking_test

import (
	"testing"
	"time"

	"locker-booking/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T, startOffset, endOffset time.Duration) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(
		uuid.New(), uuid.New(), 1,
		slot(t, startOffset, endOffset),
		booking.NewNote(""),
		base,
	)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	t.Run("created directly as confirmed", func(t *testing.T) {
		b := newTestBooking(t, 2*time.Hour, 4*time.Hour)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, booking.PaymentPending, b.PaymentStatus())
		assert.Len(t, b.AccessCode(), 6)
		assert.Equal(t, base, b.CreatedAt())
		assert.Equal(t, base, b.UpdatedAt())
	})

	t.Run("duration cap", func(t *testing.T) {
		_, err := booking.NewBooking(
			uuid.New(), uuid.New(), 1,
			slot(t, 0, 10*time.Hour+time.Second),
			booking.NewNote(""),
			base,
		)
		assert.ErrorIs(t, err, booking.ErrDurationExceeded)
	})

	t.Run("locker number must be positive", func(t *testing.T) {
		_, err := booking.NewBooking(
			uuid.New(), uuid.New(), 0,
			slot(t, 0, time.Hour),
			booking.NewNote(""),
			base,
		)
		assert.ErrorIs(t, err, booking.ErrInvalidLockerNumber)
	})
}

func TestChangeStatus(t *testing.T) {
	cases := []struct {
		name string
		from booking.Status
		to   booking.Status
		ok   bool
	}{
		{"pending to confirmed", booking.StatusPending, booking.StatusConfirmed, true},
		{"pending to cancelled", booking.StatusPending, booking.StatusCancelled, true},
		{"pending to expired", booking.StatusPending, booking.StatusExpired, true},
		{"confirmed to active", booking.StatusConfirmed, booking.StatusActive, true},
		{"active to completed", booking.StatusActive, booking.StatusCompleted, true},
		{"active to cancelled", booking.StatusActive, booking.StatusCancelled, true},
		{"active to confirmed", booking.StatusActive, booking.StatusConfirmed, false},
		{"active to pending", booking.StatusActive, booking.StatusPending, false},
		{"completed is terminal", booking.StatusCompleted, booking.StatusActive, false},
		{"cancelled is terminal", booking.StatusCancelled, booking.StatusConfirmed, false},
		{"expired is terminal", booking.StatusExpired, booking.StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := reconstructWithStatus(t, tc.from, 2*time.Hour, 4*time.Hour)

			err := b.ChangeStatus(tc.to, base.Add(time.Minute))
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, b.Status())
				assert.Equal(t, base.Add(time.Minute), b.UpdatedAt())
			} else {
				assert.ErrorIs(t, err, booking.ErrInvalidTransition)
				assert.Equal(t, tc.from, b.Status())
			}
		})
	}

	t.Run("activation stamps check-in", func(t *testing.T) {
		b := newTestBooking(t, 2*time.Hour, 4*time.Hour)
		require.NoError(t, b.ChangeStatus(booking.StatusActive, base.Add(2*time.Hour)))
		require.NotNil(t, b.CheckedInAt())
		assert.Equal(t, base.Add(2*time.Hour), *b.CheckedInAt())
	})

	t.Run("completion stamps check-out", func(t *testing.T) {
		b := newTestBooking(t, 2*time.Hour, 4*time.Hour)
		require.NoError(t, b.ChangeStatus(booking.StatusActive, base.Add(2*time.Hour)))
		require.NoError(t, b.ChangeStatus(booking.StatusCompleted, base.Add(4*time.Hour)))
		require.NotNil(t, b.CheckedOutAt())
		assert.Equal(t, base.Add(4*time.Hour), *b.CheckedOutAt())
	})
}

func TestCancel(t *testing.T) {
	t.Run("succeeds outside window", func(t *testing.T) {
		b := newTestBooking(t, 3*time.Hour, 5*time.Hour)

		err := b.Cancel(base, "changed plans")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, "changed plans", b.CancellationReason())
		require.NotNil(t, b.CancelledAt())
		assert.Equal(t, base, *b.CancelledAt())
	})

	t.Run("exactly one hour before start is allowed", func(t *testing.T) {
		b := newTestBooking(t, 2*time.Hour, 4*time.Hour)
		assert.NoError(t, b.Cancel(base.Add(time.Hour), ""))
	})

	t.Run("under one hour before start is rejected", func(t *testing.T) {
		b := newTestBooking(t, 2*time.Hour, 4*time.Hour)
		err := b.Cancel(base.Add(time.Hour+time.Second), "")
		assert.ErrorIs(t, err, booking.ErrCancellationWindowClosed)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("terminal bookings cannot be cancelled", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusCompleted, booking.StatusCancelled, booking.StatusExpired} {
			b := reconstructWithStatus(t, st, 3*time.Hour, 5*time.Hour)
			assert.ErrorIs(t, b.Cancel(base, ""), booking.ErrAlreadyTerminal)
		}
	})
}

func TestConflictsWith(t *testing.T) {
	venueID := uuid.New()

	mk := func(locker int32, startOffset, endOffset time.Duration, status booking.Status) *booking.Booking {
		return booking.ReconstructBooking(
			uuid.New(), venueID, uuid.New(), locker,
			slot(t, startOffset, endOffset),
			status, booking.PaymentPending, "123456",
			booking.NewNote(""), "",
			base, base, nil, nil, nil,
		)
	}

	a := mk(1, 0, 2*time.Hour, booking.StatusConfirmed)

	assert.True(t, a.ConflictsWith(mk(1, time.Hour, 3*time.Hour, booking.StatusActive)))
	assert.False(t, a.ConflictsWith(mk(2, time.Hour, 3*time.Hour, booking.StatusConfirmed)), "different locker")
	assert.False(t, a.ConflictsWith(mk(1, time.Hour, 3*time.Hour, booking.StatusCancelled)), "cancelled does not occupy")
	assert.False(t, a.ConflictsWith(mk(1, time.Hour, 3*time.Hour, booking.StatusPending)), "pending does not occupy")
	assert.False(t, a.ConflictsWith(mk(1, 3*time.Hour, 4*time.Hour, booking.StatusConfirmed)), "disjoint interval")
}

func reconstructWithStatus(t *testing.T, status booking.Status, startOffset, endOffset time.Duration) *booking.Booking {
	t.Helper()
	return booking.ReconstructBooking(
		uuid.New(), uuid.New(), uuid.New(), 1,
		slot(t, startOffset, endOffset),
		status, booking.PaymentPending, "123456",
		booking.NewNote(""), "",
		base, base, nil, nil, nil,
	)
}
