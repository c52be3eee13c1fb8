package repository

import (
	"context"
	"errors"

	"locker-booking/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VenueCatalog reads the per-venue locker pool size. Venue rows are managed
// by the venue service; this side only ever reads them.
type VenueCatalog struct {
	pool *pgxpool.Pool
}

func NewVenueCatalog(pool *pgxpool.Pool) *VenueCatalog {
	return &VenueCatalog{pool: pool}
}

func (c *VenueCatalog) SlotRange(ctx context.Context, venueID uuid.UUID) (int32, int32, error) {
	var totalLockers int32
	err := c.pool.QueryRow(ctx,
		`SELECT total_lockers FROM venues WHERE id = $1`,
		venueID,
	).Scan(&totalLockers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, infra.WrapRepoErr("venue not found", err, infra.KindNotFound)
		}
		return 0, 0, infra.WrapRepoErr("failed to read venue locker range", err)
	}
	return 1, totalLockers, nil
}
