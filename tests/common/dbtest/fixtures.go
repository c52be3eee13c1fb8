//go:build unit || e2e

package dbtest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reference venues every e2e test can rely on.
var (
	VenueCentralID = uuid.MustParse("7b4f2a51-93a8-4a7e-8f07-1f6f1f0a9b01")
	VenueAnnexID   = uuid.MustParse("9d1a6c33-58ef-4d4e-9c7b-2a8b3c4d5e02")
)

// SeedReferenceData inserts the venues the booking tests run against.
// Idempotent, so suites can call it after every reset.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	venues := []struct {
		id           uuid.UUID
		name         string
		totalLockers int32
	}{
		{VenueCentralID, "Central Station Lockers", 10},
		{VenueAnnexID, "Annex Kiosk", 2},
	}

	for _, v := range venues {
		_, err := pool.Exec(ctx,
			"INSERT INTO venues (id, name, total_lockers) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING",
			v.id, v.name, v.totalLockers)
		if err != nil {
			return err
		}
	}
	return nil
}

// ResetDB clears mutable state between subtests and reseeds reference data.
func ResetDB(pool *pgxpool.Pool) error {
	ctx := context.Background()

	if _, err := pool.Exec(ctx, "TRUNCATE TABLE bookings"); err != nil {
		return err
	}
	return SeedReferenceData(pool)
}
