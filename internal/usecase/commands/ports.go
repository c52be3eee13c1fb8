package commands

import (
	"context"
	"time"

	"locker-booking/internal/domain/booking"

	"github.com/google/uuid"
)

// BookingRepository is the write-side port over the reservation store. The
// engine owns all business logic; implementations only persist and query.
type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
	// FindOverlapping returns bookings on (venue, locker) in an occupying
	// status whose interval overlaps slot under the inclusive-bounds rule.
	FindOverlapping(ctx context.Context, venueID uuid.UUID, lockerNumber int32, slot booking.TimeSlot) ([]*booking.Booking, error)
	// CompleteElapsed bulk-moves active bookings whose end < now to
	// completed, returning the number of rows written.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
	// CancelStalePending bulk-cancels pending bookings created before the
	// cutoff, returning the number of rows written.
	CancelStalePending(ctx context.Context, cutoff time.Time, now time.Time) (int64, error)
}

// VenueCatalog exposes the per-venue locker pool. Read-only from the
// engine's perspective; venue management is another service's concern.
type VenueCatalog interface {
	SlotRange(ctx context.Context, venueID uuid.UUID) (min, max int32, err error)
}
