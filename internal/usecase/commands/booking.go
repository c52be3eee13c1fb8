package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/infra"
	"locker-booking/internal/pkg/clock"
	"locker-booking/internal/pkg/errs"
	"locker-booking/internal/pkg/keymutex"

	"github.com/google/uuid"
)

var (
	ErrVenueNotFound            = errs.New("venue not found")
	ErrInvalidLocker            = errs.New("locker number outside venue range")
	ErrInvalidTimeSlot          = errs.New("invalid time slot")
	ErrDurationExceeded         = errs.New("maximum rental duration exceeded")
	ErrLockerConflict           = errs.New("locker is not available for the requested time")
	ErrBookingNotFound          = errs.New("booking not found")
	ErrForbidden                = errs.New("booking belongs to another user")
	ErrAlreadyTerminal          = errs.New("booking is already completed or cancelled")
	ErrCancellationWindowClosed = errs.New("cannot cancel within one hour of start time")
	ErrInvalidTransition        = errs.New("invalid status transition")
	ErrInvalidStatus            = errs.New("invalid status value")
	ErrDatabaseOperationFailed  = errs.New("database operation failed")
)

type CreateBookingParams struct {
	VenueID      uuid.UUID
	LockerNumber int32
	StartTime    time.Time
	EndTime      time.Time
	UserID       uuid.UUID
	Note         *string
}

// UpdateBookingPatch carries the optional fields an update may change.
// Booking identity, locker and interval are immutable after creation:
// changing them would bypass conflict detection.
type UpdateBookingPatch struct {
	Status             *booking.Status
	PaymentStatus      *booking.PaymentStatus
	Note               *string
	CancellationReason *string
}

// SweepResult reports how many bookings each bulk transition touched.
type SweepResult struct {
	Completed int64
	Cancelled int64
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, params CreateBookingParams) (*booking.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, patch UpdateBookingPatch) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id, requestingUserID uuid.UUID, reason string) (*booking.Booking, error)
	// RunExpirySweep applies both idempotent bulk lifecycle transitions:
	// elapsed active bookings become completed, stale pending bookings are
	// cancelled. Safe to re-run at any time.
	RunExpirySweep(ctx context.Context) (SweepResult, error)
}

type lockerKey struct {
	venueID      uuid.UUID
	lockerNumber int32
}

type bookingCommandsImpl struct {
	repo          BookingRepository
	catalog       VenueCatalog
	clock         clock.Clock
	locks         *keymutex.KeyMutex[lockerKey]
	pendingMaxAge time.Duration
}

func NewBookingCommands(
	repo BookingRepository,
	catalog VenueCatalog,
	clk clock.Clock,
	pendingMaxAge time.Duration,
) BookingCommands {
	return &bookingCommandsImpl{
		repo:          repo,
		catalog:       catalog,
		clock:         clk,
		locks:         keymutex.New[lockerKey](),
		pendingMaxAge: pendingMaxAge,
	}
}

// CreateBooking validates the request, then performs the conflict check and
// the insert as one atomic unit under a per-(venue, locker) lock. Concurrent
// creates on the same locker with overlapping intervals resolve so that
// exactly one wins; the rest observe ErrLockerConflict and write nothing.
func (c *bookingCommandsImpl) CreateBooking(ctx context.Context, params CreateBookingParams) (*booking.Booking, error) {
	slot, err := booking.NewTimeSlot(params.StartTime, params.EndTime)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidTimeSlot)
	}
	if slot.ExceedsMaxDuration() {
		return nil, ErrDurationExceeded
	}

	min, max, err := c.catalog.SlotRange(ctx, params.VenueID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if params.LockerNumber < min || params.LockerNumber > max {
		return nil, ErrInvalidLocker
	}

	entity, err := booking.NewBooking(
		params.VenueID,
		params.UserID,
		params.LockerNumber,
		slot,
		noteFromPtr(params.Note),
		c.clock.Now(),
	)
	if err != nil {
		return nil, mapDomainErr(err)
	}

	unlock := c.locks.Lock(lockerKey{params.VenueID, params.LockerNumber})
	defer unlock()

	overlapping, err := c.repo.FindOverlapping(ctx, params.VenueID, params.LockerNumber, slot)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if len(overlapping) > 0 {
		return nil, ErrLockerConflict
	}

	if err := c.repo.Create(ctx, entity); err != nil {
		// A multi-process deployment can still lose the race at the store;
		// the repository reports that as a conflict kind.
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrLockerConflict
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return entity, nil
}

func (c *bookingCommandsImpl) UpdateBooking(ctx context.Context, id uuid.UUID, patch UpdateBookingPatch) (*booking.Booking, error) {
	entity, err := c.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()

	if patch.Status != nil {
		next := *patch.Status
		if !next.IsValid() {
			return nil, ErrInvalidStatus
		}
		// An active booking leaves through check-out only. Cancelling it is
		// CancelBooking's job, which enforces ownership and the window.
		if entity.Status() == booking.StatusActive && next != booking.StatusCompleted {
			return nil, ErrInvalidTransition
		}
		if err := entity.ChangeStatus(next, now); err != nil {
			return nil, mapDomainErr(err)
		}
	}
	if patch.PaymentStatus != nil {
		if err := entity.SetPaymentStatus(*patch.PaymentStatus, now); err != nil {
			return nil, mapDomainErr(err)
		}
	}
	if patch.Note != nil {
		entity.SetNote(booking.NewNote(strings.TrimSpace(*patch.Note)), now)
	}
	if patch.CancellationReason != nil {
		entity.SetCancellationReason(*patch.CancellationReason, now)
	}

	if err := c.repo.Update(ctx, entity); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return entity, nil
}

func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, id, requestingUserID uuid.UUID, reason string) (*booking.Booking, error) {
	entity, err := c.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !entity.IsOwnedBy(requestingUserID) {
		return nil, ErrForbidden
	}

	if err := entity.Cancel(c.clock.Now(), reason); err != nil {
		return nil, mapDomainErr(err)
	}

	if err := c.repo.Update(ctx, entity); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return entity, nil
}

func (c *bookingCommandsImpl) RunExpirySweep(ctx context.Context) (SweepResult, error) {
	now := c.clock.Now()

	completed, err := c.repo.CompleteElapsed(ctx, now)
	if err != nil {
		return SweepResult{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	cancelled, err := c.repo.CancelStalePending(ctx, now.Add(-c.pendingMaxAge), now)
	if err != nil {
		return SweepResult{Completed: completed}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if completed > 0 || cancelled > 0 {
		slog.Info("expiry sweep applied transitions",
			"completed", completed,
			"cancelled_pending", cancelled)
	}
	return SweepResult{Completed: completed, Cancelled: cancelled}, nil
}

func (c *bookingCommandsImpl) findBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	entity, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return entity, nil
}

func noteFromPtr(p *string) booking.Note {
	if p == nil {
		return booking.NewNote("")
	}
	return booking.NewNote(strings.TrimSpace(*p))
}

func mapDomainErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrDurationExceeded):
		return errs.Mark(err, ErrDurationExceeded)
	case errors.Is(err, booking.ErrInvalidLockerNumber):
		return errs.Mark(err, ErrInvalidLocker)
	case errors.Is(err, booking.ErrInvalidTransition):
		return errs.Mark(err, ErrInvalidTransition)
	case errors.Is(err, booking.ErrInvalidStatus):
		return errs.Mark(err, ErrInvalidStatus)
	case errors.Is(err, booking.ErrAlreadyTerminal):
		return errs.Mark(err, ErrAlreadyTerminal)
	case errors.Is(err, booking.ErrCancellationWindowClosed):
		return errs.Mark(err, ErrCancellationWindowClosed)
	default:
		return err
	}
}
