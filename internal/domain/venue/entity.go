// Package venue holds the read-only resource catalog view the reservation
// engine depends on. Venue onboarding and search live in another service;
// the engine only ever needs the locker pool size.
package venue

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidLockerCount = errors.New("venue must have at least one locker")

type Venue struct {
	id           uuid.UUID
	name         string
	totalLockers int32
}

func NewVenue(id uuid.UUID, name string, totalLockers int32) (*Venue, error) {
	if totalLockers < 1 {
		return nil, ErrInvalidLockerCount
	}
	return &Venue{
		id:           id,
		name:         name,
		totalLockers: totalLockers,
	}, nil
}

func (v *Venue) ID() uuid.UUID       { return v.id }
func (v *Venue) Name() string        { return v.name }
func (v *Venue) TotalLockers() int32 { return v.totalLockers }

// SlotRange returns the inclusive locker number range. Lockers are numbered
// from 1; the pool size differs per venue.
func (v *Venue) SlotRange() (min, max int32) {
	return 1, v.totalLockers
}

func (v *Venue) ContainsLocker(n int32) bool {
	return n >= 1 && n <= v.totalLockers
}
