//go:build unit || e2e

package builder

import (
	"time"

	dombooking "locker-booking/internal/domain/booking"
	reqdto "locker-booking/internal/handler/dto/request"
	"locker-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID           uuid.UUID
	VenueID      uuid.UUID
	VenueName    string
	UserID       uuid.UUID
	LockerNumber int32
	StartTime    time.Time
	EndTime      time.Time
	Status       dombooking.Status
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Now().UTC().Truncate(time.Second)
	start := now.Add(24 * time.Hour)
	note := "Gym bag and shoes"
	return &BookingBuilder{
		ID:           uuid.New(),
		VenueID:      uuid.New(),
		VenueName:    "Central Station Lockers",
		UserID:       uuid.New(),
		LockerNumber: 7,
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
		Status:       dombooking.StatusConfirmed,
		Note:         &note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	slot, err := dombooking.NewTimeSlot(b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	note := dombooking.NewNote("")
	if b.Note != nil {
		note = dombooking.NewNote(*b.Note)
	}
	return dombooking.NewBooking(b.VenueID, b.UserID, b.LockerNumber, slot, note, b.CreatedAt)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		VenueID:      b.VenueID,
		LockerNumber: b.LockerNumber,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Note:         b.Note,
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:            b.ID,
		VenueID:       b.VenueID,
		VenueName:     b.VenueName,
		UserID:        b.UserID,
		LockerNumber:  b.LockerNumber,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status.String(),
		PaymentStatus: string(dombooking.PaymentPending),
		AccessCode:    "123456",
		Note:          b.Note,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
