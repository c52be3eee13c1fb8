// Package memstore provides an in-memory reservation store suitable for
// tests and local demos. It implements the same write and read ports as the
// postgres-backed store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"locker-booking/internal/domain/booking"
	"locker-booking/internal/domain/venue"
	"locker-booking/internal/infra"
	"locker-booking/internal/infra/converter"
	"locker-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*booking.Booking
	venues   map[uuid.UUID]*venue.Venue
}

func New() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]*booking.Booking),
		venues:   make(map[uuid.UUID]*venue.Venue),
	}
}

// SeedVenue registers a venue in the catalog side of the store.
func (s *Store) SeedVenue(v *venue.Venue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venues[v.ID()] = v
}

func (s *Store) SlotRange(_ context.Context, venueID uuid.UUID) (int32, int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.venues[venueID]
	if !ok {
		return 0, 0, infra.WrapRepoErr("venue not found", nil, infra.KindNotFound)
	}
	min, max := v.SlotRange()
	return min, max, nil
}

func (s *Store) Create(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookings[b.ID()]; exists {
		return infra.WrapRepoErr("booking already exists", nil, infra.KindDuplicateKey)
	}
	s.bookings[b.ID()] = clone(b)
	return nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return clone(b), nil
}

func (s *Store) Update(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID()]; !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	s.bookings[b.ID()] = clone(b)
	return nil
}

func (s *Store) FindOverlapping(_ context.Context, venueID uuid.UUID, lockerNumber int32, slot booking.TimeSlot) ([]*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*booking.Booking
	for _, b := range s.bookings {
		if b.VenueID() != venueID || b.LockerNumber() != lockerNumber {
			continue
		}
		if !b.Status().Occupying() {
			continue
		}
		if b.TimeSlot().Overlaps(slot) {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (s *Store) CompleteElapsed(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, b := range s.bookings {
		if b.Status() == booking.StatusActive && b.HasElapsed(now) {
			if err := b.ChangeStatus(booking.StatusCompleted, now); err == nil {
				n++
			}
		}
	}
	return n, nil
}

func (s *Store) CancelStalePending(_ context.Context, cutoff time.Time, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, b := range s.bookings {
		if b.Status() == booking.StatusPending && b.CreatedAt().Before(cutoff) {
			if err := b.ChangeStatus(booking.StatusCancelled, now); err == nil {
				n++
			}
		}
	}
	return n, nil
}

// ---- read side ----

// ReadStore exposes the store's read-model facet. Separate from Store
// because the write port returns entities while the read port returns views.
type ReadStore struct {
	s *Store
}

func (s *Store) Reads() *ReadStore {
	return &ReadStore{s: s}
}

func (r *ReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return s.toView(b), nil
}

func (r *ReadStore) List(_ context.Context, filter queries.Filter) ([]*queries.BookingView, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	match := buildPredicate(filter)

	var out []*queries.BookingView
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, s.toView(b))
		}
	}
	// Newest first, mirroring the postgres store's ORDER BY.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ReadStore) BookedLockers(_ context.Context, venueID uuid.UUID, slot booking.TimeSlot) ([]int32, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int32]struct{})
	for _, b := range s.bookings {
		if b.VenueID() != venueID || !b.Status().Occupying() {
			continue
		}
		if b.TimeSlot().Overlaps(slot) {
			seen[b.LockerNumber()] = struct{}{}
		}
	}

	out := make([]int32, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	return out, nil
}

// buildPredicate combines the optional filter fields into one pure predicate.
func buildPredicate(filter queries.Filter) func(*booking.Booking) bool {
	return func(b *booking.Booking) bool {
		if filter.UserID != nil && b.UserID() != *filter.UserID {
			return false
		}
		if filter.VenueID != nil && b.VenueID() != *filter.VenueID {
			return false
		}
		if filter.Status != nil && b.Status() != *filter.Status {
			return false
		}
		if filter.From != nil && b.TimeSlot().Start().Before(*filter.From) {
			return false
		}
		if filter.To != nil && b.TimeSlot().Start().After(*filter.To) {
			return false
		}
		return true
	}
}

func (s *Store) toView(b *booking.Booking) *queries.BookingView {
	view := converter.BookingToView(b)
	if v, ok := s.venues[b.VenueID()]; ok {
		view.VenueName = v.Name()
	}
	return view
}

// clone keeps stored state isolated from entities the engine is still
// mutating.
func clone(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(
		b.ID(), b.VenueID(), b.UserID(), b.LockerNumber(),
		b.TimeSlot(), b.Status(), b.PaymentStatus(), b.AccessCode(),
		b.Note(), b.CancellationReason(),
		b.CreatedAt(), b.UpdatedAt(),
		copyTime(b.CancelledAt()), copyTime(b.CheckedInAt()), copyTime(b.CheckedOutAt()),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
