package converter

import (
	"locker-booking/internal/domain/booking"
	"locker-booking/internal/usecase/queries"
)

// BookingToView projects a domain entity onto the read model. VenueName is
// left for the caller: only the store knows how to join it.
func BookingToView(b *booking.Booking) *queries.BookingView {
	view := &queries.BookingView{
		ID:            b.ID(),
		VenueID:       b.VenueID(),
		UserID:        b.UserID(),
		LockerNumber:  b.LockerNumber(),
		StartTime:     b.TimeSlot().Start(),
		EndTime:       b.TimeSlot().End(),
		Status:        b.Status().String(),
		PaymentStatus: string(b.PaymentStatus()),
		AccessCode:    b.AccessCode(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
		CancelledAt:   b.CancelledAt(),
		CheckedInAt:   b.CheckedInAt(),
		CheckedOutAt:  b.CheckedOutAt(),
	}
	if !b.Note().IsEmpty() {
		note := b.Note().String()
		view.Note = &note
	}
	if b.CancellationReason() != "" {
		reason := b.CancellationReason()
		view.CancellationReason = &reason
	}
	return view
}
