package queries

import (
	"context"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/infra"
	"locker-booking/internal/pkg/errs"
	"locker-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrVenueNotFound   = errs.New("venue not found")
	ErrInvalidTimeSlot = errs.New("invalid time slot")
	ErrQueryFailed     = errs.New("query failed")
)

// BookingView is the read model handed to the surrounding service layer.
type BookingView struct {
	ID                 uuid.UUID  `json:"id"`
	VenueID            uuid.UUID  `json:"venue_id"`
	VenueName          string     `json:"venue_name"`
	UserID             uuid.UUID  `json:"user_id"`
	LockerNumber       int32      `json:"locker_number"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	AccessCode         string     `json:"access_code"`
	Note               *string    `json:"note,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time `json:"checked_out_at,omitempty"`
}

// Filter combines the optional list predicates. Nil fields are ignored;
// From/To restrict the booking start time to a window.
type Filter struct {
	UserID  *uuid.UUID
	VenueID *uuid.UUID
	Status  *booking.Status
	From    *time.Time
	To      *time.Time
}

// BookingReadStore is the read-side port; all methods are pure projections
// of store state.
type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	List(ctx context.Context, filter Filter) ([]*BookingView, error)
	// BookedLockers returns the distinct locker numbers on the venue that
	// carry an occupying booking overlapping slot, in no particular order.
	BookedLockers(ctx context.Context, venueID uuid.UUID, slot booking.TimeSlot) ([]int32, error)
}

type BookingQueries interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListBookings(ctx context.Context, filter Filter) ([]*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingView, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]*BookingView, error)
	// AvailableLockers computes the venue's free locker numbers for the
	// interval, ascending. A locker appears here exactly when a create for
	// it would not conflict.
	AvailableLockers(ctx context.Context, venueID uuid.UUID, start, end time.Time) ([]int32, error)
}

type bookingQueriesImpl struct {
	store   BookingReadStore
	catalog commands.VenueCatalog
}

func NewBookingQueries(store BookingReadStore, catalog commands.VenueCatalog) BookingQueries {
	return &bookingQueriesImpl{
		store:   store,
		catalog: catalog,
	}
}

func (q *bookingQueriesImpl) GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrQueryFailed)
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListBookings(ctx context.Context, filter Filter) ([]*BookingView, error) {
	views, err := q.store.List(ctx, filter)
	if err != nil {
		return nil, errs.Mark(err, ErrQueryFailed)
	}
	return views, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingView, error) {
	return q.ListBookings(ctx, Filter{UserID: &userID})
}

func (q *bookingQueriesImpl) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]*BookingView, error) {
	return q.ListBookings(ctx, Filter{VenueID: &venueID})
}

func (q *bookingQueriesImpl) AvailableLockers(ctx context.Context, venueID uuid.UUID, start, end time.Time) ([]int32, error) {
	slot, err := booking.NewTimeSlot(start, end)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidTimeSlot)
	}

	min, max, err := q.catalog.SlotRange(ctx, venueID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, errs.Mark(err, ErrQueryFailed)
	}

	booked, err := q.store.BookedLockers(ctx, venueID, slot)
	if err != nil {
		return nil, errs.Mark(err, ErrQueryFailed)
	}

	taken := make(map[int32]struct{}, len(booked))
	for _, n := range booked {
		taken[n] = struct{}{}
	}

	available := make([]int32, 0, max-min+1)
	for n := min; n <= max; n++ {
		if _, ok := taken[n]; !ok {
			available = append(available, n)
		}
	}
	return available, nil
}
