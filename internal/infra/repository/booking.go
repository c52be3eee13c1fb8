package repository

import (
	"context"
	"errors"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const occupyingStatuses = `('confirmed', 'active')`

// BookingRepository is the postgres write-side store. Create takes a
// per-(venue, locker) advisory lock inside its transaction so the overlap
// check and the insert land as one atomic unit even across processes.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	_, err := runInTxWithRetry(ctx, r.pool, func(tx pgx.Tx) (struct{}, error) {
		var zero struct{}

		// Serialize concurrent creates on the same (venue, locker) tuple.
		// hashtextextended keys the advisory lock without a lock table.
		_, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`,
			b.VenueID(), b.LockerNumber(),
		)
		if err != nil {
			return zero, infra.WrapRepoErr("failed to acquire booking lock", err)
		}

		var conflict bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE venue_id = $1
				  AND locker_number = $2
				  AND status IN `+occupyingStatuses+`
				  AND start_time <= $4
				  AND end_time >= $3
			)`,
			b.VenueID(), b.LockerNumber(), b.TimeSlot().Start(), b.TimeSlot().End(),
		).Scan(&conflict)
		if err != nil {
			return zero, infra.WrapRepoErr("failed to check booking conflicts", err)
		}
		if conflict {
			return zero, infra.WrapRepoErr("locker already booked for interval", nil, infra.KindConflict)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO bookings (
				id, venue_id, user_id, locker_number,
				start_time, end_time, status, payment_status,
				access_code, note, cancellation_reason,
				created_at, updated_at, cancelled_at, checked_in_at, checked_out_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
			b.ID(), b.VenueID(), b.UserID(), b.LockerNumber(),
			b.TimeSlot().Start(), b.TimeSlot().End(), b.Status().String(), string(b.PaymentStatus()),
			b.AccessCode(), nullableString(b.Note().String()), nullableString(b.CancellationReason()),
			b.CreatedAt(), b.UpdatedAt(), b.CancelledAt(), b.CheckedInAt(), b.CheckedOutAt(),
		)
		if err != nil {
			return zero, infra.WrapRepoErr("failed to insert booking", err)
		}
		return zero, nil
	})
	return err
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row := r.pool.QueryRow(ctx, selectBookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by id", err)
	}
	return b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET
			status = $2,
			payment_status = $3,
			note = $4,
			cancellation_reason = $5,
			updated_at = $6,
			cancelled_at = $7,
			checked_in_at = $8,
			checked_out_at = $9
		WHERE id = $1`,
		b.ID(), b.Status().String(), string(b.PaymentStatus()),
		nullableString(b.Note().String()), nullableString(b.CancellationReason()),
		b.UpdatedAt(), b.CancelledAt(), b.CheckedInAt(), b.CheckedOutAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, venueID uuid.UUID, lockerNumber int32, slot booking.TimeSlot) ([]*booking.Booking, error) {
	rows, err := r.pool.Query(ctx,
		selectBookingColumns+` FROM bookings
		WHERE venue_id = $1
		  AND locker_number = $2
		  AND status IN `+occupyingStatuses+`
		  AND start_time <= $4
		  AND end_time >= $3`,
		venueID, lockerNumber, slot.Start(), slot.End(),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find overlapping bookings", err)
	}
	defer rows.Close()

	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking row", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking rows", err)
	}
	return out, nil
}

func (r *BookingRepository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings
		SET status = 'completed', checked_out_at = $1, updated_at = $1
		WHERE status = 'active' AND end_time < $1`,
		now,
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to complete elapsed bookings", err)
	}
	return tag.RowsAffected(), nil
}

func (r *BookingRepository) CancelStalePending(ctx context.Context, cutoff time.Time, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2, updated_at = $2
		WHERE status = 'pending' AND created_at < $1`,
		cutoff, now,
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to cancel stale pending bookings", err)
	}
	return tag.RowsAffected(), nil
}

const selectBookingColumns = `SELECT
	id, venue_id, user_id, locker_number,
	start_time, end_time, status, payment_status,
	access_code, note, cancellation_reason,
	created_at, updated_at, cancelled_at, checked_in_at, checked_out_at`

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, venueID, userID                    uuid.UUID
		lockerNumber                           int32
		startTime, endTime                     time.Time
		status, paymentStatus, accessCode      string
		note, cancellationReason               *string
		createdAt, updatedAt                   time.Time
		cancelledAt, checkedInAt, checkedOutAt *time.Time
	)

	err := row.Scan(
		&id, &venueID, &userID, &lockerNumber,
		&startTime, &endTime, &status, &paymentStatus,
		&accessCode, &note, &cancellationReason,
		&createdAt, &updatedAt, &cancelledAt, &checkedInAt, &checkedOutAt,
	)
	if err != nil {
		return nil, err
	}

	slot, err := booking.NewTimeSlot(startTime, endTime)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		id, venueID, userID, lockerNumber,
		slot, booking.Status(status), booking.PaymentStatus(paymentStatus), accessCode,
		booking.NewNote(derefString(note)), derefString(cancellationReason),
		createdAt, updatedAt, cancelledAt, checkedInAt, checkedOutAt,
	), nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
