package request

import (
	"errors"
	"strings"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	VenueID      uuid.UUID `json:"venue_id" binding:"required"`
	LockerNumber int32     `json:"locker_number" binding:"required,min=1"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	Note         *string   `json:"note,omitempty"`
}

func (r CreateBookingRequest) ToParams(userID uuid.UUID) commands.CreateBookingParams {
	return commands.CreateBookingParams{
		VenueID:      r.VenueID,
		LockerNumber: r.LockerNumber,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		UserID:       userID,
		Note:         trimPtr(r.Note),
	}
}

type UpdateBookingRequest struct {
	Status             *string `json:"status,omitempty"`
	PaymentStatus      *string `json:"payment_status,omitempty"`
	Note               *string `json:"note,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
}

func (r UpdateBookingRequest) ToPatch() commands.UpdateBookingPatch {
	patch := commands.UpdateBookingPatch{
		Note:               r.Note,
		CancellationReason: trimPtr(r.CancellationReason),
	}
	if r.Status != nil {
		status := booking.Status(strings.ToLower(strings.TrimSpace(*r.Status)))
		patch.Status = &status
	}
	if r.PaymentStatus != nil {
		paymentStatus := booking.PaymentStatus(strings.ToLower(strings.TrimSpace(*r.PaymentStatus)))
		patch.PaymentStatus = &paymentStatus
	}
	return patch
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (r CancelBookingRequest) GetReason() string {
	if r.Reason == nil {
		return ""
	}
	return strings.TrimSpace(*r.Reason)
}

// AvailableLockersQuery binds the interval from query parameters in RFC 3339.
type AvailableLockersQuery struct {
	StartTime time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type ListBookingsQuery struct {
	Status *string    `form:"status"`
	From   *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ParseStatus normalizes and validates a status query value.
func ParseStatus(s string) (booking.Status, error) {
	status := booking.Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", errors.New("unknown status: " + s)
	}
	return status, nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*p)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
