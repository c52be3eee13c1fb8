package response

import (
	"time"

	"locker-booking/internal/usecase/queries"

	"github.com/jinzhu/copier"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID                 uuid.UUID  `json:"id"`
	VenueID            uuid.UUID  `json:"venueId"`
	VenueName          string     `json:"venueName"`
	UserID             uuid.UUID  `json:"userId"`
	LockerNumber       int32      `json:"lockerNumber"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            time.Time  `json:"endTime"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"paymentStatus"`
	AccessCode         string     `json:"accessCode"`
	Note               *string    `json:"note,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CheckedInAt        *time.Time `json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time `json:"checkedOutAt,omitempty"`
}

type AvailableLockersResponse struct {
	VenueID   uuid.UUID `json:"venueId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Lockers   []int32   `json:"lockers"`
}

func FromBookingView(view *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	// Field names line up with the read model; copier fills the struct.
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromBookingViews(views []*queries.BookingView) []*BookingResponse {
	out := make([]*BookingResponse, len(views))
	for i, view := range views {
		out[i] = FromBookingView(view)
	}
	return out
}
