package booking

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidLockerNumber      = errors.New("locker number must be positive")
	ErrDurationExceeded         = errors.New("maximum rental duration exceeded")
	ErrInvalidStatus            = errors.New("invalid booking status")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrAlreadyTerminal          = errors.New("booking is already completed or cancelled")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
)

// CancellationWindow is the minimum lead before start time at which an owner
// may still cancel. Exactly one hour out is allowed; strictly less is not.
const CancellationWindow = time.Hour

type Booking struct {
	id                 uuid.UUID
	venueID            uuid.UUID
	userID             uuid.UUID
	lockerNumber       int32
	timeSlot           TimeSlot
	status             Status
	paymentStatus      PaymentStatus
	accessCode         string
	note               Note
	cancellationReason string
	createdAt          time.Time
	updatedAt          time.Time
	cancelledAt        *time.Time
	checkedInAt        *time.Time
	checkedOutAt       *time.Time
}

// NewBooking creates a booking already confirmed. The pending status stays
// reachable through explicit status updates only.
func NewBooking(
	venueID, userID uuid.UUID,
	lockerNumber int32,
	slot TimeSlot,
	note Note,
	now time.Time,
) (*Booking, error) {
	if lockerNumber < 1 {
		return nil, ErrInvalidLockerNumber
	}
	if slot.ExceedsMaxDuration() {
		return nil, ErrDurationExceeded
	}

	return &Booking{
		id:            uuid.New(),
		venueID:       venueID,
		userID:        userID,
		lockerNumber:  lockerNumber,
		timeSlot:      slot,
		status:        StatusConfirmed,
		paymentStatus: PaymentPending,
		accessCode:    generateAccessCode(),
		note:          note,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructBooking(
	id, venueID, userID uuid.UUID,
	lockerNumber int32,
	timeSlot TimeSlot,
	status Status,
	paymentStatus PaymentStatus,
	accessCode string,
	note Note,
	cancellationReason string,
	createdAt, updatedAt time.Time,
	cancelledAt, checkedInAt, checkedOutAt *time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		venueID:            venueID,
		userID:             userID,
		lockerNumber:       lockerNumber,
		timeSlot:           timeSlot,
		status:             status,
		paymentStatus:      paymentStatus,
		accessCode:         accessCode,
		note:               note,
		cancellationReason: cancellationReason,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
		cancelledAt:        cancelledAt,
		checkedInAt:        checkedInAt,
		checkedOutAt:       checkedOutAt,
	}
}

// ChangeStatus moves the booking along a legal lifecycle edge and stamps
// updatedAt. Illegal edges, including any move out of a terminal status,
// fail with ErrInvalidTransition.
func (b *Booking) ChangeStatus(to Status, now time.Time) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if !b.status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}

	b.status = to
	b.updatedAt = now

	switch to {
	case StatusActive:
		t := now
		b.checkedInAt = &t
	case StatusCompleted:
		t := now
		b.checkedOutAt = &t
	case StatusCancelled, StatusExpired:
		t := now
		b.cancelledAt = &t
	}
	return nil
}

// Cancel applies the owner-initiated cancellation rules: terminal bookings
// cannot be cancelled and the start time must still be at least
// CancellationWindow away.
func (b *Booking) Cancel(now time.Time, reason string) error {
	if b.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	if b.timeSlot.Start().Sub(now) < CancellationWindow {
		return ErrCancellationWindowClosed
	}

	b.status = StatusCancelled
	b.cancellationReason = reason
	t := now
	b.cancelledAt = &t
	b.updatedAt = now
	return nil
}

func (b *Booking) SetNote(note Note, now time.Time) {
	b.note = note
	b.updatedAt = now
}

func (b *Booking) SetPaymentStatus(status PaymentStatus, now time.Time) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	b.paymentStatus = status
	b.updatedAt = now
	return nil
}

func (b *Booking) SetCancellationReason(reason string, now time.Time) {
	b.cancellationReason = reason
	b.updatedAt = now
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

func (b *Booking) HasElapsed(now time.Time) bool {
	return b.timeSlot.End().Before(now)
}

// ConflictsWith reports whether two bookings contend for the same locker at
// overlapping times. Only statuses that occupy a locker count.
func (b *Booking) ConflictsWith(other *Booking) bool {
	if b.venueID != other.venueID || b.lockerNumber != other.lockerNumber {
		return false
	}
	if !b.status.Occupying() || !other.status.Occupying() {
		return false
	}
	return b.timeSlot.Overlaps(other.timeSlot)
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) VenueID() uuid.UUID           { return b.venueID }
func (b *Booking) UserID() uuid.UUID            { return b.userID }
func (b *Booking) LockerNumber() int32          { return b.lockerNumber }
func (b *Booking) TimeSlot() TimeSlot           { return b.timeSlot }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) AccessCode() string           { return b.accessCode }
func (b *Booking) Note() Note                   { return b.note }
func (b *Booking) CancellationReason() string   { return b.cancellationReason }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
func (b *Booking) CancelledAt() *time.Time      { return b.cancelledAt }
func (b *Booking) CheckedInAt() *time.Time      { return b.checkedInAt }
func (b *Booking) CheckedOutAt() *time.Time     { return b.checkedOutAt }

// generateAccessCode returns a 6 digit code handed to the locker hardware
// integration as opaque data.
func generateAccessCode() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "000000"
	}
	n := binary.BigEndian.Uint32(buf[:]) % 1000000
	return fmt.Sprintf("%06d", n)
}
