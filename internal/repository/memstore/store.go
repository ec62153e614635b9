// Package memstore is an in-memory repository.Store with optimistic concurrency control.
// Each transaction works on a private copy of the state; commit validates that every row the
// transaction touched still carries the version it saw, then publishes the writes.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

var ErrReadOnly = errors.New("memstore: write in read-only transaction")

// FaultHook is consulted before every write. A non-nil error aborts the write and is returned
// to the caller as if the store had failed at that step. step counts writes within one transaction.
type FaultHook func(op string, step int) error

type Store struct {
	mu   sync.RWMutex
	data state

	hookMu sync.Mutex
	hook   FaultHook

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SetFaultHook installs hook for subsequent writes; nil removes it.
func (s *Store) SetFaultHook(hook FaultHook) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hook = hook
}

func (s *Store) faultHook() FaultHook {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	return s.hook
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.snapshot()
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := s.begin(false)
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.begin(true))
}

func (s *Store) begin(readOnly bool) *tx {
	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	return &tx{
		store:     s,
		work:      work,
		readOnly:  readOnly,
		auditBase: len(work.audit),
		seen:      make(map[rowKey]int64),
		written:   make(map[rowKey]struct{}),
	}
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range t.seen {
		if current := s.data.version(key); current != version {
			return fmt.Errorf("%w: %s %s changed (seen version %d, now %d)",
				repository.ErrConflict, key.table, key.id, version, current)
		}
	}

	next := s.data.clone()
	for key := range t.written {
		copyRow(next, t.work, key)
	}
	next.audit = append(next.audit, t.work.audit[t.auditBase:]...)

	if err := checkUnique(next); err != nil {
		return err
	}

	s.data = next
	return nil
}

func checkUnique(s state) error {
	plates := make(map[string]struct{}, len(s.vehicles))
	for _, v := range s.vehicles {
		if _, dup := plates[v.LicensePlate]; dup {
			return fmt.Errorf("%w: vehicles_license_plate_key", repository.ErrDuplicateKey)
		}
		plates[v.LicensePlate] = struct{}{}
	}
	licenses := make(map[string]struct{}, len(s.drivers))
	for _, d := range s.drivers {
		if _, dup := licenses[d.LicenseNumber]; dup {
			return fmt.Errorf("%w: drivers_license_number_key", repository.ErrDuplicateKey)
		}
		licenses[d.LicenseNumber] = struct{}{}
	}
	busyVehicles := make(map[uuid.UUID]struct{})
	busyDrivers := make(map[uuid.UUID]struct{})
	for _, t := range s.trips {
		if t.Status != model.TripStatusDispatched {
			continue
		}
		if _, dup := busyVehicles[t.VehicleID]; dup {
			return fmt.Errorf("%w: uniq_trips_dispatched_vehicle", repository.ErrConflict)
		}
		if _, dup := busyDrivers[t.DriverID]; dup {
			return fmt.Errorf("%w: uniq_trips_dispatched_driver", repository.ErrConflict)
		}
		busyVehicles[t.VehicleID] = struct{}{}
		busyDrivers[t.DriverID] = struct{}{}
	}
	return nil
}
