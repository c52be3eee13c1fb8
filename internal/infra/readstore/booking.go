package readstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/infra"
	"locker-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingReadStore serves the query side directly from postgres, joining
// the venue name into each view.
type BookingReadStore struct {
	pool *pgxpool.Pool
}

func NewBookingReadStore(pool *pgxpool.Pool) *BookingReadStore {
	return &BookingReadStore{pool: pool}
}

const selectViewColumns = `SELECT
	b.id, b.venue_id, v.name, b.user_id, b.locker_number,
	b.start_time, b.end_time, b.status, b.payment_status,
	b.access_code, b.note, b.cancellation_reason,
	b.created_at, b.updated_at, b.cancelled_at, b.checked_in_at, b.checked_out_at
FROM bookings b
JOIN venues v ON v.id = b.venue_id`

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := r.pool.QueryRow(ctx, selectViewColumns+` WHERE b.id = $1`, id)

	view, err := scanView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}
	return view, nil
}

func (r *BookingReadStore) List(ctx context.Context, filter queries.Filter) ([]*queries.BookingView, error) {
	where, args := buildWhere(filter)

	rows, err := r.pool.Query(ctx, selectViewColumns+where+` ORDER BY b.created_at DESC`, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var out []*queries.BookingView
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking view", err)
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking views", err)
	}
	return out, nil
}

func (r *BookingReadStore) BookedLockers(ctx context.Context, venueID uuid.UUID, slot booking.TimeSlot) ([]int32, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT locker_number FROM bookings
		WHERE venue_id = $1
		  AND status IN ('confirmed', 'active')
		  AND start_time <= $3
		  AND end_time >= $2`,
		venueID, slot.Start(), slot.End(),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query booked lockers", err)
	}
	defer rows.Close()

	var out []int32
	for rows.Next() {
		var n int32
		if err := rows.Scan(&n); err != nil {
			return nil, infra.WrapRepoErr("failed to scan locker number", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate locker numbers", err)
	}
	return out, nil
}

// buildWhere combines the optional filter fields into a WHERE clause with
// positional args. Filters compose; absent fields add nothing.
func buildWhere(filter queries.Filter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil {
		add("b.user_id = $%d", *filter.UserID)
	}
	if filter.VenueID != nil {
		add("b.venue_id = $%d", *filter.VenueID)
	}
	if filter.Status != nil {
		add("b.status = $%d", filter.Status.String())
	}
	if filter.From != nil {
		add("b.start_time >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("b.start_time <= $%d", *filter.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanView(row pgx.Row) (*queries.BookingView, error) {
	var view queries.BookingView

	err := row.Scan(
		&view.ID, &view.VenueID, &view.VenueName, &view.UserID, &view.LockerNumber,
		&view.StartTime, &view.EndTime, &view.Status, &view.PaymentStatus,
		&view.AccessCode, &view.Note, &view.CancellationReason,
		&view.CreatedAt, &view.UpdatedAt, &view.CancelledAt, &view.CheckedInAt, &view.CheckedOutAt,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}
